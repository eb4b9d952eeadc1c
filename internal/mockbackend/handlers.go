package mockbackend

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/jsonvalue"
	"github.com/provisionr/provisionr-console/internal/provisionr"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

var exportHeader = []string{"mac", "uuid", "serial", "root_password", "user_password", "luks_password", "created_at"}

// HealthHandler handles the health check request
func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(provisioning.HealthStatus{
		Status:  "healthy",
		Service: "provisionR",
	})
}

func (s *Server) getConfig(c *fiber.Ctx) error {
	return c.JSON(s.Config())
}

func (s *Server) updateConfig(c *fiber.Ctx) error {
	config := new(provisioning.Config)
	if err := json.Unmarshal(c.Body(), config); err != nil {
		return validationError(c, "body", "JSON decode error", "json_invalid")
	}
	if _, err := provisioning.ParseTargetOS(string(config.TargetOS)); err != nil {
		return validationError(c, "body.target_os", "Input should be 'Rocky9' or 'Ubuntu25.04'", "enum")
	}
	if config.Values.IsNull() {
		config.Values = jsonvalue.EmptyObject()
	}
	if config.Values.Kind() != jsonvalue.KindObject {
		return validationError(c, "body.values", "Input should be a valid dictionary", "dict_type")
	}

	s.mu.Lock()
	s.config = *config
	s.mu.Unlock()

	return c.JSON(config)
}

func (s *Server) getTemplate(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid template name")
	}
	content, ok := s.Template(name)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Template '%s' not found", name))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(content)
}

func (s *Server) uploadTemplate(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return validationError(c, "body.file", "Field required", "missing")
	}
	name := c.FormValue("template_name")
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid template name")
	}
	useAsDefault := false
	if raw := c.FormValue("use_as_default"); raw != "" {
		if useAsDefault, err = strconv.ParseBool(raw); err != nil {
			return validationError(c, "body.use_as_default", "Input should be a valid boolean", "bool_parsing")
		}
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error uploading template: %v", err))
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error uploading template: %v", err))
	}

	s.mu.Lock()
	s.templates[name] = string(content)
	if useAsDefault {
		s.templates[provisioning.DefaultTemplateName] = string(content)
	}
	s.mu.Unlock()

	return c.JSON(provisioning.UploadTemplateResponse{
		Message:      "Template uploaded successfully",
		TemplateName: name,
		UseAsDefault: useAsDefault,
	})
}

func (s *Server) renderKickstart(c *fiber.Ctx) error {
	query := c.Queries()
	for _, field := range []string{"mac", "uuid", "serial"} {
		if query[field] == "" {
			return validationError(c, "query."+field, "Field required", "missing")
		}
	}
	name := query["template_name"]
	if name == "" {
		name = provisioning.DefaultTemplateName
	}

	content, ok := s.Template(name)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound,
			fmt.Sprintf("Template '%s' not found. Expected file: %s.ks.j2", name, name))
	}

	s.mu.Lock()
	config := s.config
	s.machines = append(s.machines, machine{
		MAC:       query["mac"],
		UUID:      query["uuid"],
		Serial:    query["serial"],
		CreatedAt: time.Now().UTC(),
	})
	s.mu.Unlock()

	vars := lo.Assign(query, map[string]string{"target_os": string(config.TargetOS)})
	if fields, ok := config.Values.AsObject(); ok {
		vars = lo.Assign(vars, lo.MapValues(fields, func(v jsonvalue.Value, _ string) string {
			if str, ok := v.AsString(); ok {
				return str
			}
			return v.String()
		}))
	}

	rendered, err := render(name, content, vars)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Error rendering template: %v", err))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(rendered)
}

func (s *Server) exportMachines(c *fiber.Ctx) error {
	s.mu.Lock()
	machines := append([]machine(nil), s.machines...)
	s.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(exportHeader)
	for _, m := range machines {
		// The mock backend never generates passwords.
		w.Write([]string{m.MAC, m.UUID, m.Serial, "", "", "", m.CreatedAt.Format(time.RFC3339)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=machine_passwords.csv")
	return c.Send(buf.Bytes())
}

// jinjaVariable matches a variable at the start of an action, as in
// "{{ mac }}" or "{{ hostname | upper }}".
var jinjaVariable = regexp.MustCompile(`\{\{(-?)\s*([A-Za-z_][A-Za-z0-9_]*)`)

// render executes a kickstart template. Variables are looked up in vars and
// render empty when unknown; pipes go to the sprig functions, so simple
// filters such as upper, lower and trim behave as on the real backend.
func render(name, content string, vars map[string]string) (string, error) {
	source := jinjaVariable.ReplaceAllString(content, `{{$1 index . "$2"`)
	t, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return buf.String(), nil
}

func validationError(c *fiber.Ctx, location, msg, kind string) error {
	detail := provisionr.ValidationDetail{
		Location: lo.ToAnySlice(strings.Split(location, ".")),
		Message:  msg,
		Type:     kind,
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"detail": []provisionr.ValidationDetail{detail},
	})
}
