package models

// LocalizedName carries the Portuguese and English labels of a reference
// record.
type LocalizedName struct {
	PT string `bson:"pt" json:"pt"`
	EN string `bson:"en" json:"en"`
}

// In returns the label for lang, falling back to Portuguese.
func (n LocalizedName) In(lang string) string {
	if lang == "en" && n.EN != "" {
		return n.EN
	}
	return n.PT
}

// School is a school that publishes reading plans.
type School struct {
	ID   string        `bson:"_id"  json:"id"`
	Name LocalizedName `bson:"name" json:"name"`
}

// Category groups products of one type ("book", "stationery", ...).
type Category struct {
	ID   string        `bson:"_id"  json:"id"`
	Type string        `bson:"type" json:"type"`
	Name LocalizedName `bson:"name" json:"name"`
}

// Publisher is a book publisher.
type Publisher struct {
	ID   string `bson:"_id"  json:"id"`
	Name string `bson:"name" json:"name"`
}
