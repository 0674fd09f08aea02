package domain

import "fmt"

// Category identifies the product family a submission belongs to.
// Each category owns its own vector index and record collection.
type Category string

const (
	CategoryDrug Category = "drug"
	CategoryBaby Category = "baby"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c == CategoryDrug || c == CategoryBaby
}

// Field is a labelled attribute value, in the order it is presented
type Field struct {
	Label string
	Value string
}

// Submission is the common view over the per-category submission types
type Submission interface {
	Category() Category
	// DescriptionFields returns the attributes embedded for the similarity search.
	DescriptionFields() []Field
	// PromptFields returns the attributes echoed into explanation prompts.
	PromptFields() []Field
	// LanguageTag returns the requested reply language, empty for the default.
	LanguageTag() string
}

// DrugSubmission represents the attributes a user supplies for a drug
type DrugSubmission struct {
	DrugName            string `json:"drug_name" bson:"drug_name" binding:"required" validate:"required"`
	Price               *int   `json:"price" bson:"price" binding:"required,gte=0" validate:"required,gte=0"`
	Dosage              string `json:"dosage" bson:"dosage" binding:"required" validate:"required"`
	Form                string `json:"form" bson:"form" binding:"required" validate:"required"`
	BrandName           string `json:"brand_name" bson:"brand_name" binding:"required" validate:"required"`
	MedicineType        string `json:"medicine_type" bson:"medicine_type" binding:"required" validate:"required"`
	PackSize            string `json:"pack_size" bson:"pack_size" binding:"required" validate:"required"`
	Indications         string `json:"indications" bson:"indications" binding:"required" validate:"required"`
	SideEffects         string `json:"side_effects" bson:"side_effects" binding:"required" validate:"required"`
	ExpiryDateAvailable string `json:"expiry_date_available" bson:"expiry_date_available" binding:"required" validate:"required"`
	Platform            string `json:"platform" bson:"platform" binding:"required" validate:"required"`
	NafdacNumberPresent string `json:"nafdac_number_present" bson:"nafdac_number_present" binding:"required" validate:"required"`
	PackageDescription  string `json:"package_description" bson:"package_description" binding:"required" validate:"required"`
	Language            string `json:"language,omitempty" bson:"language,omitempty"`
}

func (d *DrugSubmission) Category() Category { return CategoryDrug }

func (d *DrugSubmission) LanguageTag() string { return d.Language }

func (d *DrugSubmission) DescriptionFields() []Field {
	return []Field{
		{"Drug Name", d.DrugName},
		{"Price", naira(d.Price)},
		{"Dosage", d.Dosage},
		{"Form", d.Form},
		{"Brand", d.BrandName},
		{"Medicine Type", d.MedicineType},
		{"Pack Size", d.PackSize},
		{"Indications", d.Indications},
		{"Side Effects", d.SideEffects},
		{"Expiry Date Visible", d.ExpiryDateAvailable},
		{"Platform", d.Platform},
		{"NAFDAC Number Present", d.NafdacNumberPresent},
		{"Package Description", d.PackageDescription},
	}
}

func (d *DrugSubmission) PromptFields() []Field {
	return []Field{
		{"Drug Name", d.DrugName},
		{"Dosage", d.Dosage},
		{"Form", d.Form},
		{"Medicine Type", d.MedicineType},
		{"Pack Size", d.PackSize},
		{"Brand Name", d.BrandName},
		{"Indications", d.Indications},
		{"Packaging Description", d.PackageDescription},
		{"Expiry Date Visible", d.ExpiryDateAvailable},
		{"NAFDAC Number Present", d.NafdacNumberPresent},
	}
}

// BabySubmission represents the attributes a user supplies for a baby product
type BabySubmission struct {
	Name               string `json:"name" bson:"name" binding:"required" validate:"required"`
	BrandName          string `json:"brand_name" bson:"brand_name" binding:"required" validate:"required"`
	PriceInNaira       *int   `json:"price_in_naira" bson:"price_in_naira" binding:"required,gte=0" validate:"required,gte=0"`
	Platform           string `json:"platform" bson:"platform" binding:"required" validate:"required"`
	ProductType        string `json:"product_type" bson:"product_type" binding:"required" validate:"required"`
	AgeGroup           string `json:"age_group" bson:"age_group" binding:"required" validate:"required"`
	PackageDescription string `json:"package_description" bson:"package_description" binding:"required" validate:"required"`
	// Wire name kept as-is for existing clients.
	VisibleExpiryDate string `json:"visible_expiriry_date" bson:"visible_expiriry_date" binding:"required" validate:"required"`
	Language          string `json:"language,omitempty" bson:"language,omitempty"`
}

func (b *BabySubmission) Category() Category { return CategoryBaby }

func (b *BabySubmission) LanguageTag() string { return b.Language }

func (b *BabySubmission) DescriptionFields() []Field {
	return []Field{
		{"Product", b.Name},
		{"Brand", b.BrandName},
		{"Price", naira(b.PriceInNaira)},
		{"Platform", b.Platform},
		{"Type", b.ProductType},
		{"Age Group", b.AgeGroup},
		{"Package", b.PackageDescription},
		{"Expiry Visible", b.VisibleExpiryDate},
	}
}

func (b *BabySubmission) PromptFields() []Field {
	return []Field{
		{"Product Name", b.Name},
		{"Brand Name", b.BrandName},
		{"Product Type", b.ProductType},
		{"Age Group", b.AgeGroup},
		{"Packaging Description", b.PackageDescription},
		{"Expiry Date Visible", b.VisibleExpiryDate},
	}
}

// naira formats a price; a nil price only reaches here on unvalidated input
func naira(amount *int) string {
	if amount == nil {
		return ""
	}
	return fmt.Sprintf("%d NGN", *amount)
}
