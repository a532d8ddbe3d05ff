package entity

import (
	"github.com/santiagocaneppa/Interview-project/constants"
)

// Record is one listed unit in the consolidated dataset. JSON keys are the dataset column names.
type Record struct {
	DevelopmentName string                 `json:"nome_empreendimento"`
	Unit            string                 `json:"unidade"`
	Availability    constants.Availability `json:"disponibilidade"`
	Price           string                 `json:"valor"`
	Remarks         *string                `json:"observações"`
}

// RemarksOrEmpty renders a null remark as an empty cell.
func (r Record) RemarksOrEmpty() string {
	if r.Remarks == nil {
		return ""
	}
	return *r.Remarks
}
