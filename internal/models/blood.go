// ABOUTME: BloodTestRecord model for lab panels.
// ABOUTME: Blood count, chemistry, lipids, electrolytes, thyroid, urinalysis.
package models

import "time"

// BloodTestRecord holds one lab panel, keyed by (TestDate, TestType).
type BloodTestRecord struct {
	TestDate time.Time `col:"test_date,key"`
	TestType string    `col:"test_type,key"`
	Notes    *string   `col:"notes"`
	PDFFile  *string   `col:"pdf_file,attachment"`

	// Red & white blood count
	Hemoglobin   *float64 `col:"hemoglobin"`
	Erythrocytes *float64 `col:"erythrocytes"`
	MCV          *float64 `col:"mcv"`
	MCH          *float64 `col:"mch"`
	Thrombocytes *float64 `col:"thrombocytes"`
	Leukocytes   *float64 `col:"leukocytes"`
	Segment      *float64 `col:"segment"`
	Monocytes    *float64 `col:"monocytes"`
	Lymphocytes  *float64 `col:"lymphocytes"`
	Basophils    *float64 `col:"basophils"`
	Eosinophils  *float64 `col:"eosinophils"`

	// Chemistry
	ALAT                  *float64 `col:"alat"`
	ASAT                  *float64 `col:"asat"`
	Creatinine            *float64 `col:"creatinine"`
	EGFR                  *float64 `col:"egfr"`
	Iron                  *float64 `col:"iron"`
	TransferrinSaturation *float64 `col:"transferrin_saturation"`
	GammaGT               *float64 `col:"gamma_gt"`
	AP                    *float64 `col:"ap"`
	IronSaturation        *float64 `col:"iron_saturation"`
	EBK                   *float64 `col:"ebk"`
	Ferritin              *float64 `col:"ferritin"`
	Transferrin           *float64 `col:"transferrin"`

	// Lipids
	Cholesterol   *float64 `col:"cholesterol"`
	Triglycerides *float64 `col:"triglycerides"`
	LDLChol       *float64 `col:"ldl_chol"`

	// Electrolytes
	Sodium    *float64 `col:"sodium"`
	Calcium   *float64 `col:"calcium"`
	Potassium *float64 `col:"potassium"`

	// Thyroid
	TSHBasal *float64 `col:"tsh_basal"`

	// Urinalysis
	HK *float64 `col:"hk"`

	LastModified *time.Time `col:"last_modified"`
}
