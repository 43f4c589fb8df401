package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths      map[string]map[string]any `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
	Items      *schema           `yaml:"items"`
}

var bookProperties = map[string]string{
	"id":               "integer",
	"name":             "string",
	"author":           "string",
	"year":             "integer",
	"isElectronicBook": "boolean",
}

func main() {
	path := "api/openapi.yaml"
	switch len(os.Args) {
	case 1:
	case 2:
		path = os.Args[1]
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [openapi.yaml]\n", os.Args[0])
		os.Exit(2)
	}

	doc, err := loadDoc(path)
	if err != nil {
		exitErr(err)
	}
	if err := checkDoc(doc); err != nil {
		exitErr(err)
	}
	fmt.Println("OpenAPI contract check passed.")
}

func checkDoc(doc openAPIDoc) error {
	if err := checkPaths(doc); err != nil {
		return err
	}
	book, err := getSchema(doc, "Book")
	if err != nil {
		return err
	}
	if err := validateBookShape("Book", book); err != nil {
		return err
	}
	input, err := getSchema(doc, "BookInput")
	if err != nil {
		return err
	}
	if err := validateBookInput(input); err != nil {
		return err
	}
	errResp, err := getSchema(doc, "ErrorResponse")
	if err != nil {
		return err
	}
	return validateErrorResponse(errResp)
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func checkPaths(doc openAPIDoc) error {
	want := map[string][]string{
		"/api/books":      {"get", "post"},
		"/api/books/{id}": {"get", "put", "delete"},
	}
	for path, methods := range want {
		ops, ok := doc.Paths[path]
		if !ok {
			return fmt.Errorf("path %q missing", path)
		}
		for _, m := range methods {
			if _, ok := ops[m]; !ok {
				return fmt.Errorf("path %q missing %s operation", path, strings.ToUpper(m))
			}
		}
	}
	return nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validateBookShape(name string, s schema) error {
	if s.Type != "object" {
		return fmt.Errorf("%s must be object", name)
	}
	for field, typ := range bookProperties {
		if name == "BookInput" && field == "id" {
			continue
		}
		prop, ok := s.Properties[field]
		if !ok {
			return fmt.Errorf("%s.%s missing", name, field)
		}
		if prop.Type != typ {
			return fmt.Errorf("%s.%s must be %s, got %q", name, field, typ, prop.Type)
		}
	}
	return nil
}

func validateBookInput(s schema) error {
	if err := validateBookShape("BookInput", s); err != nil {
		return err
	}
	if _, ok := s.Properties["id"]; ok {
		return errors.New("BookInput must not declare id")
	}
	if !makeSet(s.Required)["name"] {
		return errors.New(`BookInput.required must include "name"`)
	}
	return nil
}

func validateErrorResponse(s schema) error {
	if s.Type != "object" {
		return errors.New("ErrorResponse must be object")
	}
	required := makeSet(s.Required)
	for _, field := range []string{"error", "code"} {
		if !required[field] {
			return fmt.Errorf("ErrorResponse.required must include %q", field)
		}
	}
	for _, field := range []string{"error", "code", "requestId"} {
		prop, ok := s.Properties[field]
		if !ok || prop.Type != "string" {
			return fmt.Errorf("ErrorResponse.%s must be string", field)
		}
	}
	return nil
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
