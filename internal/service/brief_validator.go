package service

import (
	"fmt"
	"math"
	"sort"
)

type fieldType int

const (
	typeInt fieldType = iota
	typeString
	typeList
	typeObject
	typeBool
)

type atmField struct {
	name string
	kind fieldType
}

var atmFields = []atmField{
	{"id", typeInt},
	{"title", typeString},
	{"organisation", typeString},
	{"location", typeList},
	{"summary", typeString},
	{"industryBriefing", typeString},
	{"sellers", typeObject},
	{"attachments", typeList},
	{"responseTemplate", typeList},
	{"evaluationType", typeList},
	{"proposalType", typeList},
	{"evaluationCriteria", typeList},
	{"includeWeightings", typeBool},
	{"closedAt", typeString},
	{"startDate", typeString},
	{"contractLength", typeString},
	{"contractExtensions", typeString},
	{"budgetRange", typeString},
	{"workingArrangements", typeString},
	{"publish", typeBool},
	{"sellerSelector", typeString},
	{"securityClearance", typeString},
	{"workAlreadyDone", typeString},
	{"endUsers", typeString},
	{"backgroundInformation", typeString},
	{"outcome", typeString},
	{"timeframeConstraints", typeString},
	{"contactNumber", typeString},
	{"openTo", typeString},
	{"sellerCategory", typeString},
	{"requirementsLength", typeString},
}

// ValidateATMData checks ask-the-market brief data against the field whitelist.
// Unknown fields are reported first in name order, then type mismatches in whitelist order.
func ValidateATMData(data map[string]any) []string {
	errs := make([]string, 0)

	known := make(map[string]bool, len(atmFields))
	for _, f := range atmFields {
		known[f.name] = true
	}
	unexpected := make([]string, 0)
	for k := range data {
		if !known[k] {
			unexpected = append(unexpected, k)
		}
	}
	sort.Strings(unexpected)
	for _, k := range unexpected {
		errs = append(errs, fmt.Sprintf("Unexpected field \"%s\"", k))
	}

	for _, f := range atmFields {
		v, ok := data[f.name]
		if ok && !hasType(v, f.kind) {
			errs = append(errs, fmt.Sprintf("Field \"%s\" is invalid, unexpected type", f.name))
		}
	}
	return errs
}

func hasType(v any, kind fieldType) bool {
	switch kind {
	case typeInt:
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case typeString:
		_, ok := v.(string)
		return ok
	case typeList:
		_, ok := v.([]any)
		return ok
	case typeObject:
		_, ok := v.(map[string]any)
		return ok
	case typeBool:
		_, ok := v.(bool)
		return ok
	}
	return false
}
