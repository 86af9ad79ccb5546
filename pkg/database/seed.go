package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedSet maps a collection path to its documents in wire form. A document may carry
// its ID under "id"; otherwise one is generated.
type SeedSet map[string][]map[string]any

func LoadSeedFromJSON(jsonPath string) (SeedSet, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read seed json: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var set SeedSet
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("unmarshal seed json: %w", err)
	}
	return set, nil
}

// Seed inserts the documents that do not exist yet and returns how many were written.
func Seed(db *gorm.DB, set SeedSet) (int, error) {
	collections := make([]string, 0, len(set))
	for c := range set {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	inserted := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, key := range collections {
			c := strings.Trim(key, "/")
			for _, doc := range set[key] {
				id, _ := doc["id"].(string)
				if id == "" {
					id = NewID()
				}
				data := make(map[string]any, len(doc))
				for k, v := range doc {
					if k != "id" {
						data[k] = v
					}
				}
				raw, err := json.Marshal(data)
				if err != nil {
					return fmt.Errorf("marshal %s/%s: %w", c, id, err)
				}

				res := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&DocumentRow{Collection: c, ID: id, Data: datatypes.JSON(raw)})
				if res.Error != nil {
					return fmt.Errorf("insert %s/%s: %w", c, id, res.Error)
				}
				inserted += int(res.RowsAffected)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// NewID returns a 20 character document ID.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}
