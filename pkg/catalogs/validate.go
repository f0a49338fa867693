package catalogs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Validator checks seed records before they enter reconciliation.
type Validator struct {
	validate *validator.Validate
	known    map[string]bool
}

// NewValidator returns a validator. When knownWIRCodes is non-empty,
// categories and checklist items must name one of those stages.
func NewValidator(knownWIRCodes ...string) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("wircode", func(fl validator.FieldLevel) bool {
		return IsWIRCode(fl.Field().String())
	})
	_ = v.RegisterValidation("discipline", func(fl validator.FieldLevel) bool {
		return Discipline(fl.Field().String()).Valid()
	})

	known := make(map[string]bool, len(knownWIRCodes))
	for _, code := range knownWIRCodes {
		known[NormalizeCode(code)] = true
	}
	return &Validator{validate: v, known: known}
}

// Known reports whether a WIR code is accepted by the validator.
func (v *Validator) Known(code string) bool {
	if len(v.known) == 0 {
		return true
	}
	return v.known[NormalizeCode(code)]
}

// Validate checks one record and returns a *errors.MalformedRecordError
// listing every problem found, or nil.
func (v *Validator) Validate(batch string, r Record) error {
	problems := v.Problems(r)
	if len(problems) == 0 {
		return nil
	}
	return errors.NewMalformedRecordError(batch, r.Kind().String(), r.BusinessKey(), problems...)
}

// Problems returns the validation problems of a record as readable strings.
func (v *Validator) Problems(r Record) []string {
	var problems []string

	id := r.RecordID()
	switch {
	case id.IsNil():
		problems = append(problems, "id is required")
	case id.Kind() != r.Kind():
		problems = append(problems, fmt.Sprintf("id %s does not carry the %s prefix %s", id, r.Kind(), r.Kind().Prefix()))
	}

	if err := v.validate.Struct(r); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return append(problems, err.Error())
		}
		for _, fe := range validationErrors {
			problems = append(problems, describe(fe))
		}
	}

	switch rec := r.(type) {
	case Category:
		problems = append(problems, v.categoryProblems(rec)...)
	case ChecklistItem:
		problems = append(problems, v.itemProblems(rec)...)
	}
	return problems
}

func (v *Validator) categoryProblems(c Category) []string {
	var problems []string
	if prefix := StagePrefix(c.Name); prefix != "" {
		switch {
		case c.WIR == "":
			problems = append(problems, fmt.Sprintf("name carries stage prefix %s but wir is empty", prefix))
		case NormalizeCode(c.WIR) != prefix:
			problems = append(problems, fmt.Sprintf("name prefix %s conflicts with wir %s", prefix, c.WIR))
		}
		if strings.TrimSpace(StripStagePrefix(c.Name)) == "" {
			problems = append(problems, "name is empty after its stage prefix")
		}
	}
	if c.WIR != "" {
		if IsWIRCode(c.WIR) && !v.Known(c.WIR) {
			problems = append(problems, fmt.Sprintf("wir %s does not match any WIR master", c.WIR))
		}
		problems = append(problems, namespaceProblems(c.ID, c.WIR)...)
	}
	return problems
}

func (v *Validator) itemProblems(i ChecklistItem) []string {
	var problems []string
	if IsWIRCode(i.WIR) && !v.Known(i.WIR) {
		problems = append(problems, fmt.Sprintf("wir %s does not match any WIR master", i.WIR))
	}
	if i.CategoryID.IsNil() {
		problems = append(problems, "category_id is required")
	} else if i.CategoryID.Kind() != identity.KindCategory {
		problems = append(problems, fmt.Sprintf("category_id %s is not a category id", i.CategoryID))
	}
	if i.ReferenceID.IsNil() {
		problems = append(problems, "reference_id is required")
	} else if i.ReferenceID.Kind() != identity.KindReference {
		problems = append(problems, fmt.Sprintf("reference_id %s is not a reference id", i.ReferenceID))
	}
	return append(problems, namespaceProblems(i.ID, i.WIR)...)
}

// namespaceProblems checks that a stage-scoped id lives either in the
// shared namespace or in the namespace of its own stage.
func namespaceProblems(id identity.ID, wir string) []string {
	if !id.Conformant() {
		return nil
	}
	stage, ok := StageNumber(wir)
	if !ok {
		return nil
	}
	if ns := id.Namespace(); ns != 0 && ns != stage {
		return []string{fmt.Sprintf("id namespace %04d does not match stage %s", ns, wir)}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param())
	case "wircode":
		return fmt.Sprintf("%s %q is not a WIR code", fe.Field(), fe.Value())
	case "discipline":
		return fmt.Sprintf("%s %q is not one of Civil, Electrical, MEP, Both", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
