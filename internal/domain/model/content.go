package model

import "time"

type Testimonial struct {
	ID        string `bson:"_id" json:"id"`
	Author    string `bson:"author" json:"author"`
	Comment   string `bson:"comment" json:"comment"`
	Priority  int    `bson:"priority" json:"priority"`
	ImageURL  string `bson:"imageUrl" json:"imageUrl"`
	ImagePath string `bson:"imagePath" json:"imagePath,omitempty"`
}

type VisualizerColor struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name" yaml:"name"`
	Hex  string `bson:"hex" json:"hex" yaml:"hex"`
}

// ProductAttributes 後台可設定的商品屬性選項
type ProductAttributes struct {
	Brands        []string `bson:"brands" json:"brands"`
	Finishes      []string `bson:"finishes" json:"finishes"`
	ColorFamilies []string `bson:"colorFamilies" json:"colorFamilies"`
	Categories    []string `bson:"categories" json:"categories"`
}

func DefaultProductAttributes() ProductAttributes {
	return ProductAttributes{
		Brands:        []string{"Prestige Paints", "GreenSheen", "ProTect", "Pure Hues", "MetroPaints", "GoldenRay"},
		Finishes:      []string{"Matte", "Satin", "Semi-Gloss", "Gloss"},
		ColorFamilies: []string{"Reds", "Blues", "Greens", "Yellows", "Neutrals", "Whites"},
		Categories:    []string{"Interior", "Exterior", "Texture", "Wood"},
	}
}

// WithDefaults 缺少的欄位以預設值補上
func (a ProductAttributes) WithDefaults() ProductAttributes {
	def := DefaultProductAttributes()
	if len(a.Brands) == 0 {
		a.Brands = def.Brands
	}
	if len(a.Finishes) == 0 {
		a.Finishes = def.Finishes
	}
	if len(a.ColorFamilies) == 0 {
		a.ColorFamilies = def.ColorFamilies
	}
	if len(a.Categories) == 0 {
		a.Categories = def.Categories
	}
	return a
}

type EstimationRequest struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Email       string    `bson:"email" json:"email"`
	Phone       string    `bson:"phone" json:"phone"`
	Address     string    `bson:"address" json:"address"`
	Description string    `bson:"description" json:"description"`
	PhotoURL    string    `bson:"photoUrl" json:"photoUrl"`
	PhotoPath   string    `bson:"photoPath" json:"photoPath,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
