package models

import "go.mongodb.org/mongo-driver/bson"

// Tutorial is the introductory content shown before the quiz starts.
type Tutorial struct {
	Header string   `json:"header"`
	Body   RichText `json:"body"`
}

func decodeTutorial(r *docReader, field string) Tutorial {
	sub := newDocReader(r.doc+"."+field, r.sub(field))
	t := Tutorial{
		Header: sub.str("header"),
		Body:   decodeRichText(sub, "body"),
	}
	if err := sub.err(); err != nil {
		r.bad(field, "tutorial")
	}
	return t
}

func (t Tutorial) toDoc() bson.M {
	return bson.M{
		"header": t.Header,
		"body":   t.Body.toDoc(),
	}
}
