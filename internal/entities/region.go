package entities

import (
	"regexp"
	"strings"
)

// Region maps an hh area to a name users can type in the query list.
type Region struct {
	ID             string `gorm:"primaryKey"`
	ParentID       string
	Name           string
	NormalizedName string `gorm:"index"`
}

func NewRegion(id, parentID, name string) Region {
	return Region{
		ID:             id,
		ParentID:       parentID,
		Name:           name,
		NormalizedName: NormalizeRegionName(name),
	}
}

var nonWordRunes = regexp.MustCompile(`[^\wа-я]+`)

// NormalizeRegionName lowercases the name, folds ё/й and drops everything but letters and digits.
func NormalizeRegionName(name string) string {
	str := strings.ToLower(name)
	str = strings.NewReplacer("ё", "е", "й", "и").Replace(str)
	return nonWordRunes.ReplaceAllString(str, "")
}
