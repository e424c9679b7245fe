package domain

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the key under which a document's store-assigned id is exposed.
const IDField = "_id"

// Collection names.
const (
	CollectionServices = "services"
	CollectionReviews  = "reviews"
)

// Well-known review fields. Neither is enforced on write.
const (
	ReviewEmailField   = "email"
	ReviewServiceField = "service"
)

// ErrInvalidID is returned for ids that are not 24 hex characters.
var ErrInvalidID = errors.New("invalid document id")

// Document is an arbitrary JSON object.
type Document map[string]any

// NewID returns a fresh ObjectID in hex form. Every backend uses this format
// so ids look the same whichever store is configured.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates id and returns its ObjectID form.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q must be a 24 character hex string", ErrInvalidID, id)
	}
	return oid, nil
}

// ID returns the document's id, or "" if it has none.
func (d Document) ID() string {
	switch v := d[IDField].(type) {
	case string:
		return v
	case primitive.ObjectID:
		return v.Hex()
	default:
		return ""
	}
}

// WithoutID returns a shallow copy of d with the id removed. Client supplied
// ids are dropped this way on insert and update.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}

// Filter is a single-field equality match. The zero Filter matches every
// document.
type Filter struct {
	Field string
	Value any
}

// Eq returns a filter matching documents whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// MatchAll reports whether f places no constraint.
func (f Filter) MatchAll() bool {
	return f.Field == ""
}

// UpdateResult reports how many documents an update matched and changed.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult is returned verbatim by the delete endpoints.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
