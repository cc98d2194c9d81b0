package services

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs the struct's validate tags and reports the first failure as ErrInvalid.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		switch fe.Tag() {
		case "required":
			return invalid("%s is required", lowerFirst(fe.Field()))
		case "max":
			return invalid("%s must be at most %s characters", lowerFirst(fe.Field()), fe.Param())
		case "email":
			return invalid("%s is not a valid email address", lowerFirst(fe.Field()))
		}
		return invalid("%s is invalid", lowerFirst(fe.Field()))
	}
	return invalid("%s", err.Error())
}

var hyperlinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

// CheckHyperlinks validates markdown style [name](url) links in user content.
func CheckHyperlinks(content string) error {
	for _, m := range hyperlinkRe.FindAllStringSubmatch(content, -1) {
		name, url := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if name == "" {
			return invalid("Hyperlink name cannot be empty")
		}
		if url == "" {
			return invalid("Hyperlink URL cannot be empty")
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return invalid("Hyperlink URL must begin with http:// or https://")
		}
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
