// Package internal holds small helpers shared by the viewer packages.
package internal

import (
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var caserPool = sync.Pool{
	New: func() any {
		caser := cases.Title(language.English)
		return &caser
	},
}

// TitleCase returns string s in title-case.  For now only english strings are supported.
//
// A cases.Caser is stateful and must not be shared between goroutines,
// hence the pool.
func TitleCase(s string) string {
	caser := caserPool.Get().(*cases.Caser)
	defer caserPool.Put(caser)

	return caser.String(s)
}
