package models

import "go.mongodb.org/mongo-driver/bson"

// RichText is the stored rich-text triple. The delta is the editor's source
// of truth; rendered and sanitized are derived HTML produced upstream.
// This service validates shape only; sanitization happens before storage.
type RichText struct {
	Delta     string `json:"delta"`
	Rendered  string `json:"rendered"`
	Sanitized string `json:"sanitized"`
}

func decodeRichText(r *docReader, field string) RichText {
	sub := newDocReader(r.doc+"."+field, r.sub(field))
	rt := RichText{
		Delta:     sub.str("delta"),
		Rendered:  sub.str("rendered"),
		Sanitized: sub.str("sanitized"),
	}
	if err := sub.err(); err != nil {
		r.bad(field, "rich text")
	}
	return rt
}

func (rt RichText) toDoc() bson.M {
	return bson.M{
		"delta":     rt.Delta,
		"rendered":  rt.Rendered,
		"sanitized": rt.Sanitized,
	}
}
