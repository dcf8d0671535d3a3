package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/livraria-escolar/catalog/pkg/validate"
)

// ReadingPlanStatus says whether a school requires a book or only suggests it.
type ReadingPlanStatus string

const (
	Mandatory   ReadingPlanStatus = "mandatory"
	Recommended ReadingPlanStatus = "recommended"
)

// ReadingPlanEntry is a reading-plan association as submitted with a
// product, before ids are assigned.
type ReadingPlanEntry struct {
	SchoolID string            `bson:"schoolId" json:"schoolId"`
	Grade    Grade             `bson:"grade"    json:"grade"`
	Status   ReadingPlanStatus `bson:"status"   json:"status"`
}

// ReadingPlanItem is a stored association between a product and a school
// grade. ProductID is not enforced by the database; it is only ever written
// in the same batch as its product.
type ReadingPlanItem struct {
	ID        string            `bson:"_id"       json:"id"`
	ProductID string            `bson:"productId" json:"productId"`
	SchoolID  string            `bson:"schoolId"  json:"schoolId"`
	Grade     Grade             `bson:"grade"     json:"grade"`
	Status    ReadingPlanStatus `bson:"status"    json:"status"`
}

// Grade is a school year. Schools label years either numerically (3) or
// with free text ("Pré-escolar"); both forms are kept as given.
type Grade struct {
	num    float64
	text   string
	number bool
}

// NumberGrade returns a numeric grade.
func NumberGrade(n float64) Grade { return Grade{num: n, number: true} }

// TextGrade returns a free-text grade.
func TextGrade(s string) Grade { return Grade{text: s} }

// IsNumber reports whether the grade was given as a number.
func (g Grade) IsNumber() bool { return g.number }

// Number returns the numeric value; zero for text grades.
func (g Grade) Number() float64 { return g.num }

// IsEmpty reports whether no grade was given.
func (g Grade) IsEmpty() bool { return !g.number && g.text == "" }

func (g Grade) String() string {
	if g.number {
		return strconv.FormatFloat(g.num, 'f', -1, 64)
	}
	return g.text
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if g.number {
		return []byte(g.String()), nil
	}
	return json.Marshal(g.text)
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = Grade{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = TextGrade(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("grade must be a number or a string: %w", err)
	}
	*g = NumberGrade(n)
	return nil
}

func (g Grade) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if g.number {
		return bson.MarshalValue(g.num)
	}
	return bson.MarshalValue(g.text)
}

func (g *Grade) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDouble:
		*g = NumberGrade(rv.Double())
	case bson.TypeInt32:
		*g = NumberGrade(float64(rv.Int32()))
	case bson.TypeInt64:
		*g = NumberGrade(float64(rv.Int64()))
	case bson.TypeString:
		*g = TextGrade(rv.StringValue())
	case bson.TypeNull, bson.TypeUndefined:
		*g = Grade{}
	default:
		return fmt.Errorf("grade: unsupported bson type %s", t)
	}
	return nil
}

func init() {
	// Grades validate as their display form so that 0 is a present value
	// and "" is not.
	validate.RegisterType(func(v reflect.Value) interface{} {
		if g, ok := v.Interface().(Grade); ok {
			return g.String()
		}
		return nil
	}, Grade{})
}
