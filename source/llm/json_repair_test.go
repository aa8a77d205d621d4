package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid input is unchanged", `{"entries":[{"headword":"猫"}]}`, `{"entries":[{"headword":"猫"}]}`},
		{"missing quote after brace", `{headword":"猫"}`, `{"headword":"猫"}`},
		{"missing quote after comma", `{"headword":"猫", reading":"ねこ"}`, `{"headword":"猫", "reading":"ねこ"}`},
		{"trailing comma in array", `{"en":["cat","feline",]}`, `{"en":["cat","feline"]}`},
		{"trailing comma in object", "{\"headword\":\"猫\",\n}", "{\"headword\":\"猫\"\n}"},
		{"string contents untouched", `{"d":"a, } b","e":"{x\":"}`, `{"d":"a, } b","e":"{x\":"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairJSON(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), got)
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1} `))
}
