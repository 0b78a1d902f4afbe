package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/base-14/examples/go/echo-product-catalog/internal/logging"

	"github.com/labstack/echo/v4"
)

const inputKey = "validation.input"

var errNotObject = errors.New("request body must be a JSON object")

// Input is the request data rules run against: path params and the decoded
// JSON body. Numbers in the body are kept as json.Number.
type Input struct {
	Params map[string]string
	Body   map[string]any
}

func (in *Input) lookup(location, field string) (any, bool) {
	switch location {
	case LocationParams:
		v, ok := in.Params[field]
		return v, ok
	case LocationBody:
		v, ok := in.Body[field]
		return v, ok
	default:
		return nil, false
	}
}

func (in *Input) ParamInt64(name string) (int64, error) {
	return strconv.ParseInt(in.Params[name], 10, 64)
}

func (in *Input) String(field string) string {
	s, _ := in.Body[field].(string)
	return s
}

func (in *Input) Float(field string) float64 {
	f, _ := toFloat(in.Body[field])
	return f
}

func (in *Input) Bool(field string) bool {
	b, _ := in.Body[field].(bool)
	return b
}

// Validate runs every rule and collects the failures in rule order.
func Validate(in *Input, rules []Rule) []FieldError {
	errs := make([]FieldError, 0)
	for _, rule := range rules {
		if fe := rule.Apply(in); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// Gate runs the rules for a route and answers 400 with the collected errors
// instead of calling the handler when any rule fails. On success the parsed
// input is available to the handler through FromContext.
func Gate(rules ...Rule) echo.MiddlewareFunc {
	needsBody := false
	for _, rule := range rules {
		if rule.Location == LocationBody {
			needsBody = true
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			in := &Input{
				Params: make(map[string]string),
				Body:   make(map[string]any),
			}
			for _, name := range c.ParamNames() {
				in.Params[name] = c.Param(name)
			}

			if needsBody {
				body, err := decodeBody(c.Request())
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
				}
				in.Body = body
			}

			if errs := Validate(in, rules); len(errs) > 0 {
				logging.Debug(c.Request().Context()).
					Str("path", c.Path()).
					Int("errors", len(errs)).
					Msg("request validation failed")
				return c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: errs})
			}

			c.Set(inputKey, in)
			return next(c)
		}
	}
}

// FromContext returns the input stored by Gate, or an empty input when the
// route has no gate.
func FromContext(c echo.Context) *Input {
	if in, ok := c.Get(inputKey).(*Input); ok {
		return in
	}
	return &Input{
		Params: make(map[string]string),
		Body:   make(map[string]any),
	}
}

func decodeBody(r *http.Request) (map[string]any, error) {
	body := make(map[string]any)
	if r.Body == nil {
		return body, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errNotObject
	}
	return body, nil
}
