package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/jqcty/internal/dynamic"
	"github.com/roach88/jqcty/internal/native"
	"github.com/roach88/jqcty/internal/query"
)

// Channels accepted by /v1/query.
const (
	ChannelText   = "text"
	ChannelNative = "native"
	ChannelTyped  = "typed"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeBody(w, http.StatusOK, []byte(`{"status":"ok"}`))
}

// ComponentsResponse is the body of GET /v1/components.
type ComponentsResponse struct {
	Functions   []FunctionInfo   `json:"functions"`
	DataSources []DataSourceInfo `json:"data_sources"`
}

// FunctionInfo describes a registered function.
type FunctionInfo struct {
	Name        string          `json:"name"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  []ParameterInfo `json:"parameters"`
	Return      dynamic.Type    `json:"return"`
}

// ParameterInfo describes one function parameter.
type ParameterInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        dynamic.Type `json:"type"`
}

// DataSourceInfo describes a registered data source.
type DataSourceInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Attributes  []AttributeInfo `json:"attributes"`
}

// AttributeInfo describes one data source attribute.
type AttributeInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        dynamic.Type `json:"type"`
	Required    bool         `json:"required,omitempty"`
	Computed    bool         `json:"computed,omitempty"`
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	resp := ComponentsResponse{
		Functions:   []FunctionInfo{},
		DataSources: []DataSourceInfo{},
	}

	for _, f := range s.registry.Functions() {
		info := FunctionInfo{
			Name:        f.Name,
			Summary:     f.Summary,
			Description: f.Description,
			Parameters:  make([]ParameterInfo, len(f.Parameters)),
			Return:      f.Return,
		}
		for i, p := range f.Parameters {
			info.Parameters[i] = ParameterInfo{Name: p.Name, Description: p.Description, Type: p.Type}
		}
		resp.Functions = append(resp.Functions, info)
	}

	for _, d := range s.registry.DataSources() {
		info := DataSourceInfo{
			Name:        d.Name,
			Description: d.Description,
			Attributes:  make([]AttributeInfo, len(d.Schema.Attributes)),
		}
		for i, a := range d.Schema.Attributes {
			info.Attributes[i] = AttributeInfo{
				Name:        a.Name,
				Description: a.Description,
				Type:        a.Type,
				Required:    a.Required,
				Computed:    a.Computed,
			}
		}
		resp.DataSources = append(resp.DataSources, info)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeBody(w, http.StatusOK, data)
}

func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, ok := s.readObject(w, r)
	if !ok {
		return
	}

	var args []native.Value
	switch a, _ := body.Get("arguments"); v := a.(type) {
	case nil, native.Null:
	case native.List:
		args = v
	default:
		writeError(w, http.StatusBadRequest, KindInvalidRequest,
			fmt.Sprintf("'arguments' must be a list, got %s", v.Kind()))
		return
	}

	result, err := s.registry.CallFunction(r.Context(), name, args)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeValue(w, "result", dynamic.ToNative(result))
}

func (s *Server) handleDataSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, ok := s.readObject(w, r)
	if !ok {
		return
	}

	config, _ := body.Get("config")
	state, err := s.registry.ReadDataSource(r.Context(), name, config)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeValue(w, "state", dynamic.ToNative(state))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readObject(w, r)
	if !ok {
		return
	}

	program, ok := optionalString(body, "program")
	if !ok || program == "" {
		writeError(w, http.StatusBadRequest, string(query.InvalidProgram), query.EmptyProgramMessage)
		return
	}

	input, present := body.Get("input")
	if !present {
		input = native.Null{}
	}

	language, ok := optionalString(body, "language")
	if !ok {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "'language' must be a string")
		return
	}
	proc, err := s.proc.ForLanguage(language)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	channel, ok := optionalString(body, "channel")
	if !ok {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "'channel' must be a string")
		return
	}

	ctx := r.Context()
	switch channel {
	case "", ChannelText:
		text, err := proc.ExecuteText(ctx, program, input)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeValue(w, "result", native.String(text))
	case ChannelNative:
		v, err := proc.Execute(ctx, program, input)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		s.writeValue(w, "result", v)
	case ChannelTyped:
		v, err := proc.ExecuteDynamic(ctx, program, input)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		raw, err := v.MarshalJSON()
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		writeField(w, http.StatusOK, "result", raw)
	default:
		writeError(w, http.StatusBadRequest, KindInvalidRequest,
			fmt.Sprintf("unknown channel %q (want text, native or typed)", channel))
	}
}

// readObject decodes the request body as a JSON object. On failure it
// writes the error response and returns false.
func (s *Server) readObject(w http.ResponseWriter, r *http.Request) (native.Map, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, KindInvalidRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return native.Map{}, false
		}
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "failed to read request body: "+err.Error())
		return native.Map{}, false
	}

	v, err := native.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(query.MalformedInput), err.Error())
		return native.Map{}, false
	}
	m, ok := v.(native.Map)
	if !ok {
		writeError(w, http.StatusBadRequest, KindInvalidRequest,
			fmt.Sprintf("request body must be a JSON object, got %s", v.Kind()))
		return native.Map{}, false
	}
	return m, true
}

// writeValue writes {"<key>": v}. Values that cannot be encoded are
// reported as evaluation failures.
func (s *Server) writeValue(w http.ResponseWriter, key string, v native.Value) {
	raw, err := native.Encode(v)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(query.EvaluationFailure), err.Error())
		return
	}
	writeField(w, http.StatusOK, key, raw)
}

// optionalString returns the string field key. An absent or null field is
// "", true; any other non-string is "", false.
func optionalString(m native.Map, key string) (string, bool) {
	switch v, _ := m.Get(key); s := v.(type) {
	case nil, native.Null:
		return "", true
	case native.String:
		return string(s), true
	default:
		return "", false
	}
}
