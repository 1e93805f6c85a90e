package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/tissage-sgq/shiftconsole/internal/clients/shiftapi"
	"github.com/tissage-sgq/shiftconsole/internal/domain"
)

var errUpstream = errors.New("upstream down")

// fakeAPI overrides the calls a test needs; any other call panics on the nil
// embedded client.
type fakeAPI struct {
	shiftapi.Client

	mu          sync.Mutex
	key         string
	session     json.RawMessage
	sessionErr  error
	patches     []json.RawMessage
	patchErr    error
	defectCalls int
	defectErr   error
	reasonsErr  error
	entries     []domain.LostTimeEntry
	entriesErr  error
}

func (f *fakeAPI) WithSession(key string) shiftapi.Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.key = key
	return f
}

func (f *fakeAPI) SessionKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *fakeAPI) GetSession(context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session == nil {
		return json.RawMessage(`{}`), nil
	}
	return f.session, nil
}

func (f *fakeAPI) PatchSession(_ context.Context, patch any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	raw, _ := patch.(json.RawMessage)
	f.patches = append(f.patches, raw)
	return raw, nil
}

func (f *fakeAPI) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func (f *fakeAPI) ListDefectTypes(context.Context) ([]domain.DefectType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defectCalls++
	if f.defectErr != nil {
		return nil, f.defectErr
	}
	return []domain.DefectType{{ID: 42, Name: "Trou", Severity: domain.SeverityBlocking, IsActive: true}}, nil
}

func (f *fakeAPI) ListLostTimeReasons(context.Context) ([]domain.LostTimeReason, error) {
	if f.reasonsErr != nil {
		return nil, f.reasonsErr
	}
	return []domain.LostTimeReason{{ID: 3, Name: "Démarrage", IsActive: true}}, nil
}

func (f *fakeAPI) DefaultChecklistTemplate(context.Context) (domain.ChecklistTemplate, error) {
	return domain.ChecklistTemplate{}, nil
}

func (f *fakeAPI) ListOperators(context.Context) ([]domain.Operator, error) {
	return []domain.Operator{{ID: "12", FirstName: "Sam", LastName: "Martin"}}, nil
}

func (f *fakeAPI) ListProfiles(context.Context) ([]domain.ProfileSummary, error) {
	return []domain.ProfileSummary{}, nil
}

func (f *fakeAPI) ListModes(context.Context) ([]domain.Mode, error) {
	return []domain.Mode{}, nil
}

func (f *fakeAPI) ListLostTimeEntries(context.Context, string) ([]domain.LostTimeEntry, error) {
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	return f.entries, nil
}

func (f *fakeAPI) ListChecklistResponses(context.Context, string) ([]domain.ChecklistResponse, error) {
	return []domain.ChecklistResponse{}, nil
}
