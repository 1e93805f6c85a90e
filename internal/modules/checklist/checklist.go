package checklist

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

var (
	ErrUnknownItem   = errors.New("unknown checklist item")
	ErrBadAnswer     = errors.New("checklist answer must be ok, nok or na")
	ErrNotAllChecked = errors.New("every checklist item must be answered before signing")
)

// FallbackItems is the template used when the session server has none.
func FallbackItems() []domain.ChecklistItem {
	return []domain.ChecklistItem{
		{ID: 1, Text: "Vérifier la présence et l'état des EPI", IsRequired: true},
		{ID: 2, Text: "Contrôler les dispositifs d'arrêt d'urgence", IsRequired: true},
		{ID: 3, Text: "Vérifier la propreté du poste de travail", IsRequired: true},
		{ID: 4, Text: "Contrôler l'état des outils et équipements", IsRequired: true},
		{ID: 5, Text: "Vérifier les niveaux machine", IsRequired: true},
		{ID: 6, Text: "Contrôler les paramètres selon fiche", IsRequired: true},
		{ID: 7, Text: "Vérifier les matières premières", IsRequired: true},
		{ID: 8, Text: "Contrôler le stock de consommables", IsRequired: false},
		{ID: 9, Text: "Lire les consignes du poste précédent", IsRequired: true},
		{ID: 10, Text: "Noter les anomalies dans le cahier", IsRequired: true},
	}
}

// Checklist is the operator's start-of-shift checklist. Not safe for concurrent use.
type Checklist struct {
	templateID int
	items      []domain.ChecklistItem
	f          domain.ChecklistFields
	now        func() time.Time
}

func New(tpl domain.ChecklistTemplate, fields domain.ChecklistFields, now func() time.Time) *Checklist {
	if now == nil {
		now = time.Now
	}
	c := &Checklist{now: now}
	c.SetTemplate(tpl)
	c.f = fields
	if c.f.Responses == nil {
		c.f.Responses = map[string]string{}
	}
	return c
}

// SetTemplate swaps the template; an empty one falls back to FallbackItems.
func (c *Checklist) SetTemplate(tpl domain.ChecklistTemplate) {
	c.templateID = tpl.ID
	c.items = tpl.Items
	if len(c.items) == 0 {
		c.templateID = 1
		c.items = FallbackItems()
	}
}

func (c *Checklist) TemplateID() int { return c.templateID }

func (c *Checklist) Items() []domain.ChecklistItem {
	return append([]domain.ChecklistItem{}, c.items...)
}

// Fields returns a copy of the persisted state.
func (c *Checklist) Fields() domain.ChecklistFields {
	out := c.f
	out.Responses = make(map[string]string, len(c.f.Responses))
	for k, v := range c.f.Responses {
		out.Responses[k] = v
	}
	return out
}

func (c *Checklist) Response(itemID int) string {
	return c.f.Responses[strconv.Itoa(itemID)]
}

// Answer records an answer. Giving the current answer again removes it, and an
// incomplete checklist loses its signature. It reports whether the signature
// was cleared.
func (c *Checklist) Answer(itemID int, value string) (signatureCleared bool, err error) {
	if !c.hasItem(itemID) {
		return false, fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	if !domain.ValidChecklistAnswer(value) {
		return false, fmt.Errorf("%w: %q", ErrBadAnswer, value)
	}
	key := strconv.Itoa(itemID)
	if c.f.Responses[key] == value {
		delete(c.f.Responses, key)
	} else {
		c.f.Responses[key] = value
	}
	if !c.AllChecked() && c.f.Signature != "" {
		c.f.Signature, c.f.SignatureTime = "", ""
		return true, nil
	}
	return false, nil
}

// Sign stores the upper-cased signature with the current HH:MM time. An empty
// signature clears it.
func (c *Checklist) Sign(signature string) error {
	sig := strings.ToUpper(strings.TrimSpace(signature))
	if sig == "" {
		c.f.Signature, c.f.SignatureTime = "", ""
		return nil
	}
	if !c.AllChecked() {
		return ErrNotAllChecked
	}
	c.f.Signature = sig
	c.f.SignatureTime = c.now().Format("15:04")
	return nil
}

func (c *Checklist) AllChecked() bool {
	for _, it := range c.items {
		if c.f.Responses[strconv.Itoa(it.ID)] == "" {
			return false
		}
	}
	return true
}

func (c *Checklist) HasRequiredItems() bool {
	for _, it := range c.items {
		if it.IsRequired {
			return true
		}
	}
	return false
}

// Complete is every item answered plus a signature time.
func (c *Checklist) Complete() bool {
	return c.AllChecked() && c.f.SignatureTime != ""
}

// NokCount counts the "nok" answers.
func (c *Checklist) NokCount() int {
	n := 0
	for _, v := range c.f.Responses {
		if v == domain.ChecklistNOK {
			n++
		}
	}
	return n
}

// Submission is the response sent to the session server for a shift.
func (c *Checklist) Submission(shiftID string) domain.ChecklistResponse {
	f := c.Fields()
	return domain.ChecklistResponse{
		ShiftID:           shiftID,
		TemplateID:        c.templateID,
		Responses:         f.Responses,
		OperatorSignature: f.Signature,
		SignatureTime:     f.SignatureTime,
	}
}

func (c *Checklist) hasItem(id int) bool {
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}
