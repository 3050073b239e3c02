package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const shippingResource = "shipping"

// Price preferences for Cost.
const (
	PriceLowest  = "lowest"
	PriceHighest = "highest"
	PriceAll     = "all"
)

// ShippingService wraps the rate and tracking endpoints the backend proxies
// from the courier aggregator. Those answers carry their own meta block.
type ShippingService struct {
	c *Client
}

type Destination struct {
	ID              int64  `json:"id" validate:"required"`
	Label           string `json:"label"`
	ProvinceName    string `json:"province_name"`
	CityName        string `json:"city_name"`
	DistrictName    string `json:"district_name"`
	SubdistrictName string `json:"subdistrict_name"`
	ZipCode         string `json:"zip_code"`
}

type CostInput struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	Weight      int    `json:"weight" validate:"gt=0"`
	// Courier is a colon separated list such as "jne:tiki".
	Courier string `json:"courier" validate:"required"`
	Price   string `json:"price,omitempty" validate:"omitempty,oneof=lowest highest all"`
}

type CostOption struct {
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Service     string          `json:"service"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	ETD         string          `json:"etd"`
}

type Tracking struct {
	Delivered bool `json:"delivered"`
	Summary   struct {
		CourierCode   string `json:"courier_code"`
		CourierName   string `json:"courier_name"`
		WaybillNumber string `json:"waybill_number"`
		ServiceCode   string `json:"service_code"`
		WaybillDate   string `json:"waybill_date"`
		ShipperName   string `json:"shipper_name"`
		ReceiverName  string `json:"receiver_name"`
		Origin        string `json:"origin"`
		Destination   string `json:"destination"`
		Status        string `json:"status"`
	} `json:"summary"`
	DeliveryStatus struct {
		Status      string `json:"status"`
		PODReceiver string `json:"pod_receiver"`
		PODDate     string `json:"pod_date"`
		PODTime     string `json:"pod_time"`
	} `json:"delivery_status"`
	Manifest []TrackingManifest `json:"manifest"`
}

type TrackingManifest struct {
	Code        string `json:"manifest_code"`
	Description string `json:"manifest_description"`
	Date        string `json:"manifest_date"`
	Time        string `json:"manifest_time"`
	CityName    string `json:"city_name"`
}

type shippingMeta struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Status  string `json:"status"`
}

// Destinations searches the courier aggregator's destination index.
func (s *ShippingService) Destinations(ctx context.Context, search string, offset, limit int) ([]Destination, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{
		"search": {search},
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}
	path := "/shipping/destination"
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: path, query: q})
	if err != nil {
		return nil, err
	}
	if err := checkMeta(http.MethodGet, path, raw); err != nil {
		return nil, err
	}
	return decodeList[Destination](s.c, shippingResource, raw)
}

// Cost quotes every courier service for a parcel. Options without a price,
// code or service are dropped; the rest are sorted by in.Price.
func (s *ShippingService) Cost(ctx context.Context, in CostInput) ([]CostOption, error) {
	if err := s.c.validateInput("shipping.cost", in); err != nil {
		return nil, err
	}
	path := "/shipping/cost"
	raw, err := s.c.send(ctx, request{method: http.MethodPost, path: path, body: in})
	if err != nil {
		return nil, err
	}
	if err := checkMeta(http.MethodPost, path, raw); err != nil {
		return nil, err
	}
	all, err := decodeList[CostOption](s.c, shippingResource, raw)
	if err != nil {
		return nil, err
	}
	return filterCosts(all, in.Price), nil
}

func filterCosts(all []CostOption, price string) []CostOption {
	out := make([]CostOption, 0, len(all))
	for _, o := range all {
		if o.Cost.IsPositive() && o.Code != "" && o.Service != "" {
			out = append(out, o)
		}
	}
	switch price {
	case PriceLowest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cost.LessThan(out[j].Cost) })
	case PriceHighest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Cost.GreaterThan(out[j].Cost) })
	}
	return out
}

// Track looks up a waybill.
func (s *ShippingService) Track(ctx context.Context, awb, courier string) (*Tracking, error) {
	awb, courier = strings.TrimSpace(awb), strings.TrimSpace(courier)
	fields := map[string]string{}
	if awb == "" {
		fields["awb"] = "is required"
	}
	if courier == "" {
		fields["courier"] = "is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Op: "shipping.track", Fields: fields}
	}

	path := "/shipping/track"
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: path, query: url.Values{"awb": {awb}, "courier": {courier}}})
	if err != nil {
		return nil, err
	}
	if err := checkMeta(http.MethodGet, path, raw); err != nil {
		return nil, err
	}

	var body struct {
		Data *Tracking `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &SchemaError{Resource: shippingResource, Err: err}
	}
	if body.Data == nil {
		return nil, &SchemaError{Resource: shippingResource, Err: errMissingData}
	}
	return body.Data, nil
}

// checkMeta turns an aggregator error reported inside a 2xx answer into an
// APIError carrying the aggregator's code.
func checkMeta(method, path string, raw []byte) error {
	var body struct {
		Meta *shippingMeta `json:"meta"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Meta == nil {
		return nil
	}
	if body.Meta.Code != http.StatusOK {
		msg := body.Meta.Message
		if msg == "" {
			msg = "shipping provider returned an error"
		}
		return &APIError{Method: method, Path: path, Status: body.Meta.Code, Message: msg}
	}
	return nil
}
