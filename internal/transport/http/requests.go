package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"windoa/internal/engine"
	apierrors "windoa/internal/errors"
)

// AEPRequest is the request body for POST /api/analysis/aep.
type AEPRequest struct {
	DatasetID         string  `json:"dataset_id" validate:"required"`
	NumSim            int     `json:"num_sim" validate:"omitempty,min=1,max=20000"`
	TimeResolution    string  `json:"time_resolution" validate:"omitempty,oneof=MS ME D h"`
	RegModel          string  `json:"reg_model" validate:"omitempty,oneof=lin gam gbm etr"`
	RegTemperature    bool    `json:"reg_temperature"`
	RegWindDirection  bool    `json:"reg_wind_direction"`
	UncertaintyMeter  float64 `json:"uncertainty_meter" validate:"omitempty,gt=0,lt=1"`
	UncertaintyLosses float64 `json:"uncertainty_losses" validate:"omitempty,gt=0,lt=1"`
	OutlierDetection  bool    `json:"outlier_detection"`
}

// Params applies the documented defaults and maps onto engine parameters.
func (r AEPRequest) Params() engine.AEPParams {
	p := engine.AEPParams{
		NumSim:            r.NumSim,
		TimeResolution:    r.TimeResolution,
		RegModel:          r.RegModel,
		RegTemperature:    r.RegTemperature,
		RegWindDirection:  r.RegWindDirection,
		UncertaintyMeter:  r.UncertaintyMeter,
		UncertaintyLosses: r.UncertaintyLosses,
		OutlierDetection:  r.OutlierDetection,
	}
	if p.NumSim == 0 {
		p.NumSim = 10
	}
	if p.TimeResolution == "" {
		p.TimeResolution = "MS"
	}
	if p.RegModel == "" {
		p.RegModel = "lin"
	}
	if p.UncertaintyMeter == 0 {
		p.UncertaintyMeter = 0.005
	}
	if p.UncertaintyLosses == 0 {
		p.UncertaintyLosses = 0.05
	}
	return p
}

// ElectricalLossesRequest is the request body for POST /api/analysis/electrical-losses.
type ElectricalLossesRequest struct {
	DatasetID        string  `json:"dataset_id" validate:"required"`
	NumSim           int     `json:"num_sim" validate:"omitempty,min=1,max=20000"`
	UncertaintyMeter float64 `json:"uncertainty_meter" validate:"omitempty,gt=0,lt=1"`
	UncertaintyScada float64 `json:"uncertainty_scada" validate:"omitempty,gt=0,lt=1"`
}

func (r ElectricalLossesRequest) Params() engine.ElectricalLossesParams {
	p := engine.ElectricalLossesParams{
		NumSim:           r.NumSim,
		UncertaintyMeter: r.UncertaintyMeter,
		UncertaintyScada: r.UncertaintyScada,
	}
	if p.NumSim == 0 {
		p.NumSim = 10
	}
	if p.UncertaintyMeter == 0 {
		p.UncertaintyMeter = 0.005
	}
	if p.UncertaintyScada == 0 {
		p.UncertaintyScada = 0.005
	}
	return p
}

// TurbineEnergyRequest is the request body for POST /api/analysis/turbine-energy.
type TurbineEnergyRequest struct {
	DatasetID        string  `json:"dataset_id" validate:"required"`
	NumSim           int     `json:"num_sim" validate:"omitempty,min=1,max=20000"`
	UncertaintyScada float64 `json:"uncertainty_scada" validate:"omitempty,gt=0,lt=1"`
}

func (r TurbineEnergyRequest) Params() engine.TurbineEnergyParams {
	p := engine.TurbineEnergyParams{
		NumSim:           r.NumSim,
		UncertaintyScada: r.UncertaintyScada,
	}
	if p.NumSim == 0 {
		p.NumSim = 10
	}
	if p.UncertaintyScada == 0 {
		p.UncertaintyScada = 0.005
	}
	return p
}

// WakeLossesRequest is the request body for POST /api/analysis/wake-losses.
// Wake losses resample whole wind-direction bins per simulation, so the
// simulation ceiling is far lower than the other methods.
type WakeLossesRequest struct {
	DatasetID         string  `json:"dataset_id" validate:"required"`
	NumSim            int     `json:"num_sim" validate:"omitempty,min=1,max=100"`
	WindDirectionCol  string  `json:"wind_direction_col"`
	WindDirectionType string  `json:"wind_direction_data_type" validate:"omitempty,oneof=scada tower"`
	WDBinWidth        float64 `json:"wd_bin_width" validate:"omitempty,gte=1,lte=30"`
}

func (r WakeLossesRequest) Params() engine.WakeLossesParams {
	p := engine.WakeLossesParams{
		NumSim:            r.NumSim,
		WindDirectionCol:  r.WindDirectionCol,
		WindDirectionType: r.WindDirectionType,
		WDBinWidth:        r.WDBinWidth,
	}
	if p.NumSim == 0 {
		p.NumSim = 10
	}
	if p.WindDirectionCol == "" {
		p.WindDirectionCol = "WMET_HorWdDir"
	}
	if p.WindDirectionType == "" {
		p.WindDirectionType = "scada"
	}
	if p.WDBinWidth == 0 {
		p.WDBinWidth = 5.0
	}
	return p
}

// newValidator builds the request validator, using JSON tag names in error
// messages so the client sees the field it actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationProblem converts validator failures into an APIError listing
// every failed field.
func validationProblem(err error) *apierrors.APIError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apierrors.InvalidRequestWithError(err)
	}

	var details []apierrors.ValidationError
	for _, fe := range fieldErrors {
		details = append(details, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return apierrors.NewValidationErrors(details)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
