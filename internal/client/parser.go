package client

import (
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// Wire shapes of the root document. Pointers and nil-able containers let
// validation tell a missing field from an empty one.

type wireRef struct {
	ID          *string `json:"id"`
	Ref         *string `json:"ref"`
	Label       *string `json:"label"`
	IsMasterRef bool    `json:"isMasterRef"`
	ScheduledAt *int64  `json:"scheduledAt"`
}

func (r wireRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.NotNil),
		validation.Field(&r.Ref, validation.NotNil),
		validation.Field(&r.Label, validation.NotNil),
	)
}

type wireField struct {
	Type     *string `json:"type"`
	Multiple bool    `json:"multiple"`
	Default  *string `json:"default"`
}

func (f wireField) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.NotNil),
	)
}

type wireForm struct {
	Name    *string              `json:"name"`
	Method  *string              `json:"method"`
	Rel     *string              `json:"rel"`
	Enctype *string              `json:"enctype"`
	Action  *string              `json:"action"`
	Fields  map[string]wireField `json:"fields"`
}

func (f wireForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Method, validation.NotNil),
		validation.Field(&f.Enctype, validation.NotNil),
		validation.Field(&f.Action, validation.NotNil),
		validation.Field(&f.Fields, validation.NotNil),
	)
}

type wireAPIData struct {
	Refs          []wireRef            `json:"refs"`
	Bookmarks     map[string]string    `json:"bookmarks"`
	Types         map[string]string    `json:"types"`
	Tags          []string             `json:"tags"`
	Forms         map[string]wireForm  `json:"forms"`
	OAuthInitiate *string              `json:"oauth_initiate"`
	OAuthToken    *string              `json:"oauth_token"`
	Experiments   *prismic.Experiments `json:"experiments"`
}

func (d wireAPIData) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Refs, validation.NotNil),
		validation.Field(&d.Bookmarks, validation.NotNil),
		validation.Field(&d.Types, validation.NotNil),
		validation.Field(&d.Tags, validation.NotNil),
		validation.Field(&d.Forms, validation.NotNil),
		validation.Field(&d.OAuthInitiate, validation.NotNil),
		validation.Field(&d.OAuthToken, validation.NotNil),
	)
}

// ParseAPIData decodes a root document. document names the source in the
// returned *prismic.ParseError.
func ParseAPIData(document string, data []byte) (*prismic.APIData, error) {
	var wire wireAPIData

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return nil, &prismic.ParseError{Document: document, Err: err}
	}

	err = wire.Validate()
	if err != nil {
		return nil, &prismic.ParseError{Document: document, Err: err}
	}

	return wire.toAPIData(), nil
}

func (d wireAPIData) toAPIData() *prismic.APIData {
	refs := make([]prismic.Ref, 0, len(d.Refs))
	for _, ref := range d.Refs {
		refs = append(refs, ref.toRef())
	}

	forms := make(map[string]prismic.Form, len(d.Forms))
	for name, form := range d.Forms {
		forms[name] = form.toForm()
	}

	experiments := prismic.Experiments{}
	if d.Experiments != nil {
		experiments = *d.Experiments
	}

	if experiments.Draft == nil {
		experiments.Draft = []prismic.Experiment{}
	}

	if experiments.Running == nil {
		experiments.Running = []prismic.Experiment{}
	}

	return &prismic.APIData{
		Refs:      refs,
		Bookmarks: d.Bookmarks,
		Types:     d.Types,
		Tags:      d.Tags,
		Forms:     forms,
		OAuthEndpoints: prismic.OAuthEndpoints{
			Initiate: *d.OAuthInitiate,
			Token:    *d.OAuthToken,
		},
		Experiments: experiments,
	}
}

func (r wireRef) toRef() prismic.Ref {
	ref := prismic.Ref{
		ID:          *r.ID,
		Ref:         *r.Ref,
		Label:       *r.Label,
		IsMasterRef: r.IsMasterRef,
	}

	if r.ScheduledAt != nil {
		scheduledAt := time.UnixMilli(*r.ScheduledAt).UTC()
		ref.ScheduledAt = &scheduledAt
	}

	return ref
}

func (f wireForm) toForm() prismic.Form {
	fields := make(map[string]prismic.Field, len(f.Fields))
	for name, field := range f.Fields {
		fields[name] = prismic.Field{
			Type:     *field.Type,
			Multiple: field.Multiple,
			Default:  field.Default,
		}
	}

	return prismic.Form{
		Name:    f.Name,
		Method:  *f.Method,
		Rel:     f.Rel,
		Enctype: *f.Enctype,
		Action:  *f.Action,
		Fields:  fields,
	}
}
