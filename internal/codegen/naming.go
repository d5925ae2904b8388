package codegen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ActionName derives a client method name from an endpoint's controller, action and HTTP
// verb. The result is never empty.
func ActionName(controller, action, verb string) string {
	if action == "" {
		return verbName(verb)
	}

	controller = strings.TrimSuffix(controller, "Controller")
	name := strings.TrimSuffix(action, "Async")
	name = strings.TrimSuffix(name, "Action")
	if controller != "" {
		name = strings.TrimPrefix(name, controller)
	}
	if name == "" {
		return verbName(verb)
	}
	return lowerFirst(name)
}

// ServiceName returns the artifact name of a controller group
func ServiceName(controller string) string {
	name := strings.TrimSuffix(controller, "Controller")
	if name == "" {
		name = controller
	}
	return name + "Service"
}

func verbName(verb string) string {
	switch strings.ToUpper(verb) {
	case "GET":
		return "get"
	case "POST":
		return "create"
	case "PUT":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return "do"
	}
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// nameSet hands out unique method names within one service
type nameSet map[string]int

func (n nameSet) claim(name string) string {
	n[name]++
	if n[name] == 1 {
		return name
	}
	for {
		candidate := name + strconv.Itoa(n[name])
		if _, taken := n[candidate]; !taken {
			n[candidate] = 1
			return candidate
		}
		n[name]++
	}
}
