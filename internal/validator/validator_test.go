package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/rdd81/smart-budget-app/internal/uuid"
)

type ruleRequest struct {
	Keyword         string `validate:"required,notblank,max=100"`
	TransactionType string `validate:"required,transaction_type"`
	CategoryID      string `validate:"required,uuid_string"`
}

type categoryRequest struct {
	Type string `validate:"required,category_type"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	valid := ruleRequest{Keyword: "coffee", TransactionType: "expense", CategoryID: uuid.New()}

	tests := []struct {
		name    string
		mutate  func(*ruleRequest)
		wantErr bool
	}{
		{"valid", func(*ruleRequest) {}, false},
		{"income", func(r *ruleRequest) { r.TransactionType = "income" }, false},
		{"transfer rejected", func(r *ruleRequest) { r.TransactionType = "transfer" }, true},
		{"upper case rejected", func(r *ruleRequest) { r.TransactionType = "EXPENSE" }, true},
		{"blank keyword", func(r *ruleRequest) { r.Keyword = "   " }, true},
		{"bad uuid", func(r *ruleRequest) { r.CategoryID = "42" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Struct(req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, v.Struct(categoryRequest{Type: "income"}))
	assert.Error(t, v.Struct(categoryRequest{Type: "investment"}))
}
