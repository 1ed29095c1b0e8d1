// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns used by raw SQL queries.
package schema

// ReelDocumentTable represents the 'reel.document' table
type ReelDocumentTable struct {
	Table     string
	Name      string
	Body      string
	UpdatedAt string
}

var ReelDocument = ReelDocumentTable{
	Table:     "reel.document",
	Name:      "name",
	Body:      "body",
	UpdatedAt: "updatedat",
}
