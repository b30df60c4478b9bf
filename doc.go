// Package mdbookpandoc renders mdBook-style Markdown books with Pandoc.
//
// The library loads a book's SUMMARY.md and chapter files, preprocesses
// every chapter into Pandoc's native AST (normalizing headings, resolving
// intra-book links, inlining footnotes, applying hidden-code-line rules
// and annotating over-wide tables) and invokes pandoc once per configured
// output profile on the concatenated document.
//
// # Quick Start
//
//	cfg, err := mdbookpandoc.LoadConfig("book.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	svc, err := mdbookpandoc.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bk, err := book.Load(".", cfg.Book.Source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := svc.Build(context.Background(), bk, "book/pandoc")
//
// Chapters are preprocessed concurrently; pandoc itself runs once per
// output profile, sequentially.
package mdbookpandoc
