package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"seo_dashboard/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections tạo các collection còn thiếu trong database.
func EnsureCollections(ctx context.Context, db *mongo.Database, names []string) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	for _, name := range names {
		if name == "" || have[name] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", name)
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	return nil
}

// indexSpec là một index được khai báo qua struct tag `index`
type indexSpec struct {
	Name    string
	Keys    bson.D
	Options *options.IndexOptions
}

// parseIndexTag tách tag "single:1,compound:name;ttl:3600" thành danh sách cấu hình
func parseIndexTag(tag string) []map[string]string {
	result := []map[string]string{}
	for _, part := range strings.Split(tag, ";") {
		entry := map[string]string{}
		for _, subPart := range strings.Split(part, ",") {
			subPart = strings.TrimSpace(subPart)
			if subPart == "" {
				continue
			}
			kv := strings.SplitN(subPart, ":", 2)
			if len(kv) == 2 {
				entry[kv[0]] = kv[1]
			} else {
				entry[kv[0]] = ""
			}
		}
		result = append(result, entry)
	}
	return result
}

// parseOrder lấy thứ tự sắp xếp (1 hoặc -1) từ cấu hình
func parseOrder(config map[string]string, key string) int {
	if config[key] == "-1" || config["order"] == "-1" {
		return -1
	}
	return 1
}

// collectIndexSpecs đọc tag `index` của model và trả về danh sách index cần tạo.
// Thứ tự field trong compound index theo thứ tự khai báo trong struct.
func collectIndexSpecs(model interface{}) ([]indexSpec, error) {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []indexSpec
	var groupOrder []string
	groups := map[string]*indexSpec{}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, config := range parseIndexTag(tag) {
			if _, ok := config["single"]; ok {
				name := bsonField + "_single"
				specs = append(specs, indexSpec{
					Name:    name,
					Keys:    bson.D{{Key: bsonField, Value: parseOrder(config, "single")}},
					Options: options.Index().SetName(name),
				})
			}

			if _, ok := config["unique"]; ok {
				name := bsonField + "_unique"
				opts := options.Index().SetName(name).SetUnique(true)
				if _, sparse := config["sparse"]; sparse {
					opts.SetSparse(true)
				}
				specs = append(specs, indexSpec{Name: name, Keys: bson.D{{Key: bsonField, Value: 1}}, Options: opts})
			}

			if ttlValue, ok := config["ttl"]; ok {
				ttl, err := strconv.Atoi(ttlValue)
				if err != nil {
					return nil, fmt.Errorf("TTL không hợp lệ cho field %s: %w", bsonField, err)
				}
				name := bsonField + "_ttl"
				specs = append(specs, indexSpec{
					Name:    name,
					Keys:    bson.D{{Key: bsonField, Value: 1}},
					Options: options.Index().SetName(name).SetExpireAfterSeconds(int32(ttl)),
				})
			}

			if groupName, ok := config["compound"]; ok && groupName != "" {
				g, exists := groups[groupName]
				if !exists {
					g = &indexSpec{Name: groupName, Options: options.Index().SetName(groupName)}
					if strings.HasSuffix(groupName, "_unique") {
						g.Options.SetUnique(true)
					}
					groups[groupName] = g
					groupOrder = append(groupOrder, groupName)
				}
				g.Keys = append(g.Keys, bson.E{Key: bsonField, Value: parseOrder(config, "compound_order")})
			}
		}
	}

	for _, name := range groupOrder {
		specs = append(specs, *groups[name])
	}
	return specs, nil
}

// sameIndex so sánh index hiện có trên server với cấu hình mới
func sameIndex(existing bson.M, spec indexSpec) bool {
	existingKeys, ok := existing["key"].(bson.M)
	if !ok || len(existingKeys) != len(spec.Keys) {
		return false
	}
	for _, key := range spec.Keys {
		want, _ := key.Value.(int)
		switch ev := existingKeys[key.Key].(type) {
		case int32:
			if int(ev) != want {
				return false
			}
		case int64:
			if int(ev) != want {
				return false
			}
		case float64:
			if int(ev) != want {
				return false
			}
		default:
			return false
		}
	}

	unique, _ := existing["unique"].(bool)
	if spec.Options.Unique != nil && *spec.Options.Unique != unique {
		return false
	}
	if spec.Options.ExpireAfterSeconds != nil {
		ttl, ok := existing["expireAfterSeconds"].(int32)
		if !ok || ttl != *spec.Options.ExpireAfterSeconds {
			return false
		}
	}
	return true
}

// CreateIndexes tạo (hoặc thay thế khi cấu hình đổi) các index khai báo trên model.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	log := logger.WithModule("database").WithField("collection", collection.Name())

	specs, err := collectIndexSpecs(model)
	if err != nil {
		return err
	}

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existingIndexes := map[string]bson.M{}
	for cursor.Next(ctx) {
		var indexInfo bson.M
		if err := cursor.Decode(&indexInfo); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := indexInfo["name"].(string); ok {
			existingIndexes[name] = indexInfo
		}
	}

	for _, spec := range specs {
		if existing, ok := existingIndexes[spec.Name]; ok {
			if sameIndex(existing, spec) {
				log.Debugf("Index %s đã tồn tại và đúng cấu hình, bỏ qua", spec.Name)
				continue
			}
			if _, err := collection.Indexes().DropOne(ctx, spec.Name); err != nil {
				return fmt.Errorf("không thể xóa index %s: %w", spec.Name, err)
			}
			log.Infof("Đã xóa index cũ: %s", spec.Name)
		}

		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: spec.Options}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		log.Infof("Đã tạo index: %s", spec.Name)
	}
	return nil
}
