package handlers

import (
	"errors"
	"net/http"

	"github.com/tissage-sgq/shiftconsole/internal/console"
	"github.com/tissage-sgq/shiftconsole/internal/modules/checklist"
	"github.com/tissage-sgq/shiftconsole/internal/modules/order"
	"github.com/tissage-sgq/shiftconsole/internal/modules/profile"
	"github.com/tissage-sgq/shiftconsole/internal/modules/quality"
	"github.com/tissage-sgq/shiftconsole/internal/modules/roll"
	"github.com/tissage-sgq/shiftconsole/internal/modules/stoppage"
	"github.com/tissage-sgq/shiftconsole/internal/modules/summary"
	"github.com/tissage-sgq/shiftconsole/internal/platform/apierr"
	"github.com/tissage-sgq/shiftconsole/internal/services"
)

type errClass struct {
	err    error
	status int
	code   string
}

var errClasses = []errClass{
	{services.ErrConsoleNotFound, http.StatusNotFound, "console_not_found"},
	{stoppage.ErrNotFound, http.StatusNotFound, "stoppage_not_found"},
	{console.ErrClosed, http.StatusGone, "console_closed"},
	{console.ErrSaveInProgress, http.StatusConflict, "save_in_progress"},
	{console.ErrNoShift, http.StatusConflict, "shift_not_identified"},
	{summary.ErrSaveDisabled, http.StatusUnprocessableEntity, "save_disabled"},
	{checklist.ErrNotAllChecked, http.StatusUnprocessableEntity, "checklist_incomplete"},
	{checklist.ErrUnknownItem, http.StatusBadRequest, "unknown_checklist_item"},
	{checklist.ErrBadAnswer, http.StatusBadRequest, "bad_checklist_answer"},
	{checklist.ErrBadVisa, http.StatusBadRequest, "bad_visa"},
	{order.ErrNegativeLength, http.StatusBadRequest, "bad_target_length"},
	{profile.ErrUnknownProfile, http.StatusBadRequest, "unknown_profile"},
	{profile.ErrUnknownMode, http.StatusBadRequest, "unknown_mode"},
	{quality.ErrUnknownSide, http.StatusBadRequest, "bad_micrometry_side"},
	{quality.ErrBadIndex, http.StatusBadRequest, "bad_micrometry_index"},
	{quality.ErrUnknownPoint, http.StatusBadRequest, "bad_surface_mass_point"},
	{roll.ErrNotMeasurementCell, http.StatusBadRequest, "not_thickness_cell"},
	{roll.ErrUnknownDefectType, http.StatusBadRequest, "unknown_defect_type"},
	{roll.ErrInputNotEmpty, http.StatusConflict, "input_not_empty"},
	{roll.ErrCellOutOfGrid, http.StatusBadRequest, "cell_out_of_grid"},
	{stoppage.ErrNoReason, http.StatusBadRequest, "stoppage_reason_required"},
	{stoppage.ErrBadDuration, http.StatusBadRequest, "bad_stoppage_duration"},
}

// classify attaches an HTTP status to the errors the console operations
// return. Unknown errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, ec := range errClasses {
		if errors.Is(err, ec.err) {
			return apierr.New(ec.status, ec.code, err)
		}
	}
	return err
}
