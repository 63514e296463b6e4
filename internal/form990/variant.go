package form990

import (
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/sells-group/form990-cli/internal/schedule"
)

// ErrUnimplementedVariant is returned when balance or compensation processing
// is requested for a variant that carries no table for it.
var ErrUnimplementedVariant = eris.New("form990: variant does not implement this category")

var validate = validator.New()

// Form identifies a filing variant.
type Form string

const (
	FormBase Form = "base"
	Form990  Form = "990"
)

// DerivedField is an output computed by Combine from two extracted fields.
type DerivedField struct {
	Output string `validate:"required"`
	Left   string `validate:"required"`
	Right  string `validate:"required"`
}

// BalanceSpec configures balance extraction for one variant.
type BalanceSpec struct {
	Schedule string         `validate:"required"`
	Part     string         `validate:"required"`
	Fields   []FieldSpec    `validate:"required,unique=Output,dive"`
	Derived  []DerivedField `validate:"dive"`
}

// CompensationSpec configures per-person extraction for one variant.
type CompensationSpec struct {
	Schedule string      `validate:"required"`
	Group    string      `validate:"required"`
	Fields   []FieldSpec `validate:"required,unique=Output,dive"`
}

// Variant is a filing type together with its field tables. A nil table
// means the variant does not implement that category.
type Variant struct {
	Form         Form `validate:"required"`
	Balance      *BalanceSpec
	Compensation *CompensationSpec
}

// Validate checks the variant's field tables.
func (v Variant) Validate() error {
	if err := validate.Struct(v); err != nil {
		return eris.Wrapf(err, "form990: invalid %s variant", v.Form)
	}
	if v.Balance == nil {
		return nil
	}
	outputs := make(map[string]bool, len(v.Balance.Fields))
	for _, f := range v.Balance.Fields {
		outputs[f.Output] = true
	}
	for _, d := range v.Balance.Derived {
		if !outputs[d.Left] || !outputs[d.Right] {
			return eris.Errorf("form990: derived field %q references unknown inputs %q, %q", d.Output, d.Left, d.Right)
		}
		if outputs[d.Output] {
			return eris.Errorf("form990: derived field %q shadows an extracted field", d.Output)
		}
	}
	return nil
}

// Base is the variant with header processing only.
func Base() Variant {
	return Variant{Form: FormBase}
}

// Return990 is the full Form 990 variant: Part VIII contributions and
// Schedule J officer compensation.
func Return990() Variant {
	return Variant{
		Form: Form990,
		Balance: &BalanceSpec{
			Schedule: schedule.IRS990,
			Part:     "part_viii",
			Fields: []FieldSpec{
				{Output: "total_contrib", Source: "TtlCntrbtnsAmt", Type: TypeInt},
				{Output: "govt_grants", Source: "GvrnmntGrntsAmt", Type: TypeInt},
				{Output: "federated_campaigns", Source: "FdrtdCmpgnsAmt", Type: TypeInt},
				{Output: "membership_dues", Source: "MmbrshpDsAmt", Type: TypeInt},
				{Output: "fundraising_events", Source: "FndrsngAmt", Type: TypeInt},
				{Output: "related_orgs", Source: "RltdOrgnztnsAmt", Type: TypeInt},
				{Output: "all_other_contrib", Source: "AllOthrCntrbtnsAmt", Type: TypeInt},
				{Output: "noncash_contrib", Source: "NncshCntrbtnsAmt", Type: TypeInt},
			},
			Derived: []DerivedField{
				{Output: "private_support", Left: "total_contrib", Right: "govt_grants"},
			},
		},
		Compensation: &CompensationSpec{
			Schedule: schedule.ScheduleJ,
			Group:    "SkdJRltdOrgOffcrTrstKyEmpl",
			Fields: []FieldSpec{
				// Some filers put individual names in the business name line.
				{Output: "person", Source: "PrsnNm", Alternate: "BsnssNmLn1Txt", Type: TypeString, Cleanup: Title},
				{Output: "title", Source: "TtlTxt", Type: TypeString, Cleanup: Title},
				{Output: "base_org", Source: "BsCmpnstnFlngOrgAmt", Type: TypeInt},
				{Output: "base_rel", Source: "CmpnstnBsdOnRltdOrgsAmt", Type: TypeInt},
				{Output: "bonus_org", Source: "BnsFlngOrgnztnAmnt", Type: TypeInt},
				{Output: "bonus_rel", Source: "BnsRltdOrgnztnsAmt", Type: TypeInt},
				{Output: "other_org", Source: "OthrCmpnstnFlngOrgAmt", Type: TypeInt},
				{Output: "other_rel", Source: "OthrCmpnstnRltdOrgsAmt", Type: TypeInt},
				{Output: "defer_org", Source: "DfrrdCmpnstnFlngOrgAmt", Type: TypeInt},
				{Output: "defer_rel", Source: "DfrrdCmpRltdOrgsAmt", Type: TypeInt},
				{Output: "nontax_ben_org", Source: "NntxblBnftsFlngOrgAmt", Type: TypeInt},
				{Output: "nontax_ben_rel", Source: "NntxblBnftsRltdOrgsAmt", Type: TypeInt},
				{Output: "990_total_org", Source: "TtlCmpnstnFlngOrgAmt", Type: TypeInt},
				{Output: "990_total_rel", Source: "TtlCmpnstnRltdOrgsAmt", Type: TypeInt},
				{Output: "prev_rep_org", Source: "CmpRprtPrr990FlngOrgAmt", Type: TypeInt},
				{Output: "prev_rep_rel", Source: "CmpRprtPrr990RltdOrgsAmt", Type: TypeInt},
			},
		},
	}
}

// ParseForm returns the variant for a form name such as "990".
func ParseForm(s string) (Variant, error) {
	switch Form(s) {
	case Form990:
		return Return990(), nil
	case FormBase:
		return Base(), nil
	default:
		return Variant{}, eris.Errorf("form990: unknown form %q (valid: 990, base)", s)
	}
}
