package service

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogLookup resolves tag and ingredient ids while validating a recipe
type CatalogLookup interface {
	ExistingTagIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	IngredientsByID(ctx context.Context, ids []uint) (map[uint]models.Ingredient, error)
}

// IngredientLine is a validated recipe ingredient line
type IngredientLine struct {
	Ingredient models.Ingredient
	Amount     int
}

// ValidateTags checks the submitted tag list and returns the tag ids in
// submission order.
func ValidateTags(ctx context.Context, raw json.RawMessage, lookup CatalogLookup) ([]uint, error) {
	if isAbsent(raw) {
		return nil, invalid("tags", MsgRequiredField)
	}
	items, ok := decodeList(raw)
	if !ok || len(items) == 0 {
		return nil, invalid("tags", MsgNotNonEmptyList, "tags")
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		id, ok := positiveID(item)
		if !ok {
			return nil, invalid("tags", MsgTagNotPositive, display(item))
		}
		if seen[id] {
			return nil, invalid("tags", MsgTagDuplicate, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	existing, err := lookup.ExistingTagIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !existing[id] {
			return nil, invalid("tags", MsgTagUnknown, id)
		}
	}
	return ids, nil
}

// ValidateIngredients checks the submitted ingredient lines. Each line is
// checked in turn (keys, amount, existence, duplicate) and the first
// violation is returned.
func ValidateIngredients(ctx context.Context, raw json.RawMessage, lookup CatalogLookup) ([]IngredientLine, error) {
	// A present null is a malformed list, not a missing field
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, invalid("ingredients", MsgRequiredField)
	}
	items, ok := decodeList(raw)
	if !ok || len(items) == 0 {
		return nil, invalid("ingredients", MsgNotNonEmptyList, "ingredients")
	}

	// Resolve every well-formed id in one query
	var candidates []uint
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			if id, ok := positiveID(obj["id"]); ok {
				candidates = append(candidates, id)
			}
		}
	}
	known, err := lookup.IngredientsByID(ctx, candidates)
	if err != nil {
		return nil, err
	}

	lines := make([]IngredientLine, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]interface{})
		rawAmount, hasAmount := obj["amount"]
		if !hasAmount {
			return nil, invalid("amount", MsgAmountRequired, display(item))
		}
		rawID, hasID := obj["id"]
		if !hasID {
			return nil, invalid("id", MsgIDRequired, display(item))
		}
		amount, ok := parseAmount(rawAmount)
		if !ok || amount <= 0 {
			return nil, invalid("amount", MsgAmountNotPositive, display(item))
		}
		id, ok := positiveID(rawID)
		ingredient, exists := known[id]
		if !ok || !exists {
			return nil, invalid("ingredients", MsgIngredientUnknown, display(rawID))
		}
		if seen[id] {
			return nil, invalid("ingredients", MsgIngredientDuplicate, ingredient.Name)
		}
		seen[id] = true
		lines = append(lines, IngredientLine{Ingredient: ingredient, Amount: amount})
	}
	return lines, nil
}

// ValidateUsername rejects characters outside word characters and ".@+-",
// then the reserved name "me".
func ValidateUsername(username string) error {
	if bad := invalidRunes(username, isUsernameRune); bad != "" {
		return invalid("username", MsgUsernameChars, bad, username)
	}
	if username == "me" {
		return invalid("username", MsgUsernameForbidden, username)
	}
	return nil
}

// ValidateSlug accepts ASCII letters, digits, "-" and "_"
func ValidateSlug(slug string) error {
	if slug == "" {
		return invalid("slug", MsgRequiredField)
	}
	if bad := invalidRunes(slug, isSlugRune); bad != "" {
		return invalid("slug", MsgSlugChars, bad, slug)
	}
	return nil
}

func isUsernameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) ||
		r == '_' || strings.ContainsRune(".@+-", r)
}

func isSlugRune(r rune) bool {
	return r < unicode.MaxASCII && (r == '-' || r == '_' ||
		unicode.IsLetter(r) || unicode.IsDigit(r))
}

// invalidRunes returns each rejected character once, in order of appearance
func invalidRunes(s string, allowed func(rune) bool) string {
	var b strings.Builder
	seen := make(map[rune]bool)
	for _, r := range s {
		if !allowed(r) && !seen[r] {
			seen[r] = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeList(raw json.RawMessage) ([]interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, false
	}
	return items, true
}

// positiveID accepts JSON integers greater than zero only
func positiveID(v interface{}) (uint, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil || i <= 0 || uint64(i) > math.MaxUint32 {
		return 0, false
	}
	return uint(i), true
}

// parseAmount accepts integers, numeric strings, and truncates fractional
// numbers.
func parseAmount(v interface{}) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return clampInt(i), true
		}
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return clampInt(int64(f)), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return clampInt(i), true
	default:
		return 0, false
	}
}

func clampInt(i int64) int {
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	return int(i)
}

// parseCookingTime follows the same integer rules as ingredient amounts
func parseCookingTime(raw json.RawMessage) (int, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	return parseAmount(v)
}

func display(v interface{}) string {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
