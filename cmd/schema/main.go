// Command schema emits the JSON schema for the service's configuration
// documents, for validation and editor tooling.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/iancoleman/orderedmap"
	"github.com/invopop/jsonschema"

	"wayfarer/nav/follower"
	"wayfarer/nav/world"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schema: missing -out path")
	}

	schema, err := buildSchema()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("schema: marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schema: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schema: write schema: %v", err)
	}
}

func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	worldSchema := reflector.ReflectFromType(reflect.TypeOf(world.Config{}))
	if worldSchema == nil {
		return nil, fmt.Errorf("failed to reflect world config schema")
	}
	worldSchema.Version = ""
	worldSchema.Title = "World Config"
	worldSchema.Description = "Field dimensions, seed, and obstacle generation settings."

	followerSchema := reflector.ReflectFromType(reflect.TypeOf(follower.Config{}))
	if followerSchema == nil {
		return nil, fmt.Errorf("failed to reflect follower config schema")
	}
	followerSchema.Version = ""
	followerSchema.Title = "Follower Config"
	followerSchema.Description = "Greedy follower tunables: step sizes, reward weights, and thrashing correction."

	properties := orderedmap.New()
	properties.Set("world", worldSchema)
	properties.Set("follower", followerSchema)

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Wayfarer Service Config",
		Description: "Configuration documents accepted by the navigation service.",
		Type:        "object",
		Properties:  properties,
	}
	return root, nil
}
