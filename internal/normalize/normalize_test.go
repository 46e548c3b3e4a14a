package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masonvector/masonvector/internal/model"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   model.Claimant
		want string
	}{
		{"all fields", model.Claimant{Name: "  John Smith ", DOB: " 1980-01-01", State: "qld "}, "john smith|1980-01-01|QLD"},
		{"missing dob", model.Claimant{Name: "Jane Doe", State: "NSW"}, "jane doe||NSW"},
		{"name only", model.Claimant{Name: "JANE"}, "jane||"},
		{"empty", model.Claimant{}, "||"},
		{"inner whitespace kept", model.Claimant{Name: "John  Smith"}, "john  smith||"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKey_CaseAndWhitespaceInsensitive(t *testing.T) {
	a := model.Claimant{Name: "John Smith", DOB: "1980-01-01", State: "QLD"}
	b := model.Claimant{Name: " john smith", DOB: "1980-01-01 ", State: "qld"}
	assert.Equal(t, Key(a), Key(b))
}

func TestIdent(t *testing.T) {
	assert.Equal(t, "a@b.com", Ident("  A@B.com "))
	assert.Equal(t, "", Ident("   "))
}

func TestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Smith", "john smith"},
		{"  O'Brien,   Mary-Kate ", "o brien mary kate"},
		{"SMITH, J.", "smith j"},
		{"---", ""},
		{"", ""},
		{"Unit 4B", "unit 4b"},
		{"José Álvarez", "josé álvarez"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.in))
		})
	}
}

func TestFoldedName(t *testing.T) {
	assert.Equal(t, "jose alvarez", FoldedName("José Álvarez"))
	assert.Equal(t, FoldedName("Zoë"), FoldedName("Zoe"))
}

func TestFromFields_Aliases(t *testing.T) {
	c := FromFields(map[string]string{
		"Full_Name":     " John Smith ",
		"Date_Of_Birth": "1980-01-01",
		"Region":        "qld",
		"Amount_Owed":   "$1,234.50",
		"Email_Address": "JOHN@example.com",
		"claimId":       "C-1",
		"legacy_id":     "L-9",
		"ref":           "R1; R2",
		"notes":         "called twice",
	})

	assert.Equal(t, "John Smith", c.Name)
	assert.Equal(t, "1980-01-01", c.DOB)
	assert.Equal(t, "qld", c.State)
	assert.InDelta(t, 1234.50, c.Amount, 1e-9)
	assert.Equal(t, "JOHN@example.com", c.Email)
	assert.Equal(t, "C-1", c.ClaimID)
	assert.Equal(t, "L-9", c.ExternalID)
	assert.Equal(t, []string{"R1", "R2"}, c.References)
	assert.Equal(t, map[string]string{"notes": "called twice"}, c.Extra)
}

func TestFromFields_FirstLastName(t *testing.T) {
	c := FromFields(map[string]string{"firstName": "Jane", "lastName": "Doe"})
	assert.Equal(t, "Jane Doe", c.Name)

	c = FromFields(map[string]string{"last_name": "Doe"})
	assert.Equal(t, "Doe", c.Name)

	c = FromFields(map[string]string{"name": "Full Name Wins", "first_name": "Jane"})
	assert.Equal(t, "Full Name Wins", c.Name)
}

func TestFromFields_Empty(t *testing.T) {
	c := FromFields(nil)
	assert.Equal(t, model.Claimant{}, c)
}

func TestFromAny(t *testing.T) {
	c := FromAny(map[string]any{
		"name":       "Jane Doe",
		"amount":     12.5,
		"dob":        nil,
		"references": []any{"A", "B"},
		"verified":   true,
	})

	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "", c.DOB)
	assert.InDelta(t, 12.5, c.Amount, 1e-9)
	assert.Equal(t, []string{"A", "B"}, c.References)
	assert.Equal(t, "true", c.Extra["verified"])
}

func TestFromFields_CollidingHeaders(t *testing.T) {
	fields := map[string]string{
		"Name":      "",
		" name":     "Jane Doe",
		"NAME ":     "Someone Else",
		"Full-Name": "",
	}

	for i := 0; i < 20; i++ {
		c := FromFields(fields)
		assert.Equal(t, "Jane Doe", c.Name)
		assert.Nil(t, c.Extra)
	}
}

func TestFromAny_JSONNumber(t *testing.T) {
	c := FromAny(map[string]any{
		"name":     "A",
		"claim_id": json.Number("12345678901234567891"),
		"amount":   json.Number("12.50"),
	})

	assert.Equal(t, "12345678901234567891", c.ClaimID)
	assert.InDelta(t, 12.5, c.Amount, 1e-9)
}

func TestParseAmount(t *testing.T) {
	assert.InDelta(t, 1000.0, ParseAmount("1,000"), 1e-9)
	assert.InDelta(t, -5.25, ParseAmount(" -5.25 "), 1e-9)
	assert.Equal(t, 0.0, ParseAmount("n/a"))
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 0.0, ParseAmount("1.2.3"))
	assert.InDelta(t, 1000.0, ParseAmount("1e3"), 1e-9)
	assert.Equal(t, 0.0, ParseAmount("NaN"))
}
