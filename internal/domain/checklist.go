package domain

// ChecklistItem is one line of the start-of-shift checklist.
type ChecklistItem struct {
	ID         int    `json:"id" yaml:"id"`
	Text       string `json:"text" yaml:"text"`
	IsRequired bool   `json:"is_required" yaml:"is_required"`
}

type ChecklistTemplate struct {
	ID    int             `json:"id"`
	Name  string          `json:"name,omitempty"`
	Items []ChecklistItem `json:"items"`
}

// Checklist answers.
const (
	ChecklistOK  = "ok"
	ChecklistNOK = "nok"
	ChecklistNA  = "na"
)

func ValidChecklistAnswer(v string) bool {
	return v == ChecklistOK || v == ChecklistNOK || v == ChecklistNA
}

// PendingChecklist is a submitted checklist awaiting a manager visa.
type PendingChecklist struct {
	ID                    int    `json:"id"`
	ShiftID               string `json:"shift_id"`
	ShiftDate             string `json:"shift_date"`
	ShiftVacation         string `json:"shift_vacation"`
	OperatorName          string `json:"operator_name"`
	OperatorSignature     string `json:"operator_signature"`
	OperatorSignatureDate string `json:"operator_signature_date,omitempty"`
	ManagementVisa        string `json:"management_visa"`
	ManagementVisaDate    string `json:"management_visa_date,omitempty"`
	NokCount              int    `json:"nok_count"`
	CompletionRate        Number `json:"completion_rate"`
	CreatedAt             string `json:"created_at,omitempty"`
}

// ChecklistResponse is the checklist submitted for a shift.
type ChecklistResponse struct {
	ID                int               `json:"id,omitempty"`
	ShiftID           string            `json:"shift_id"`
	TemplateID        int               `json:"template_id,omitempty"`
	Responses         map[string]string `json:"responses"`
	OperatorSignature string            `json:"operator_signature"`
	SignatureTime     string            `json:"signature_time,omitempty"`
}
