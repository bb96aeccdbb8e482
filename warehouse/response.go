package warehouse

import (
	"encoding/json"

	"github.com/alekLukanen/errs"

	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/operations"
)

const (
	StatusOK                  = 200
	StatusInternalServerError = 500

	IngestionFailureMessage = "Error: Unable to retrieve data."
)

// Response is the result of one job invocation. Body is either a layer
// status object or a plain message string.
type Response struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`

	FailedLayers []elements.Layer `json:"-"`
}

type LayerStatusBody struct {
	BronzeStatus string `json:"bronze_status"`
	SilverStatus string `json:"silver_status"`
	GoldStatus   string `json:"gold_status"`
}

func (obj Response) OK() bool {
	return obj.StatusCode == StatusOK
}

func (obj Response) Marshal() ([]byte, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return data, nil
}

func successResponse(result operations.Result) Response {
	body, _ := json.Marshal(LayerStatusBody{
		BronzeStatus: result.Bronze.Message,
		SilverStatus: result.Silver.Message,
		GoldStatus:   result.Gold.Message,
	})

	failed := make([]elements.Layer, 0)
	for _, status := range []elements.LayerStatus{result.Bronze, result.Silver, result.Gold} {
		if !status.OK {
			failed = append(failed, status.Layer)
		}
	}
	return Response{StatusCode: StatusOK, Body: body, FailedLayers: failed}
}

func ingestionFailureResponse() Response {
	body, _ := json.Marshal(IngestionFailureMessage)
	return Response{StatusCode: StatusInternalServerError, Body: body}
}
