package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Cookie is a backend cookie in browser export format
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseCookies parses cookies from JSON data.
// Supports both list format [{name, value}] and dict format {name: value}.
func ParseCookies(data []byte) ([]Cookie, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		cookies := make([]Cookie, 0, len(dictFormat))
		for name, value := range dictFormat {
			cookies = append(cookies, Cookie{Name: name, Value: value})
		}
		if len(cookies) == 0 {
			return nil, fmt.Errorf("no cookies found in file")
		}
		sortCookies(cookies)
		return cookies, nil
	}

	var listFormat []Cookie
	if err := json.Unmarshal(data, &listFormat); err == nil {
		cookies := make([]Cookie, 0, len(listFormat))
		for _, c := range listFormat {
			if c.Name != "" {
				cookies = append(cookies, c)
			}
		}
		if len(cookies) == 0 {
			return nil, fmt.Errorf("no cookies found in file")
		}
		return cookies, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// ImportCookies reads a cookie export file and stores its cookies
func ImportCookies(store CookieStore, sourcePath string) ([]Cookie, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source file not found: %s", sourcePath)
		}
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := ParseCookies(data)
	if err != nil {
		return nil, err
	}

	if err := store.SetCookies(cookies); err != nil {
		return nil, err
	}
	return cookies, nil
}

// Lookup returns the value of the named cookie
func Lookup(cookies []Cookie, name string) (string, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

func copyCookies(cookies []Cookie) []Cookie {
	if cookies == nil {
		return nil
	}
	out := make([]Cookie, len(cookies))
	copy(out, cookies)
	return out
}

// sortCookies orders cookies by name so dict-format imports are deterministic
func sortCookies(cookies []Cookie) {
	sort.Slice(cookies, func(i, j int) bool { return cookies[i].Name < cookies[j].Name })
}
