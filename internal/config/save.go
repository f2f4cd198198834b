package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/biliterm/internal/log"
)

// LoadRooms reads the startup room list from the config file.
// A missing file or key yields an empty list.
func LoadRooms(configPath string) ([]uint64, error) {
	doc, err := readDocument(configPath)
	if err != nil {
		return nil, err
	}
	root := rootMapping(doc)
	if root == nil {
		return nil, nil
	}
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value != "rooms" {
			continue
		}
		var rooms []uint64
		if err := root.Content[i+1].Decode(&rooms); err != nil {
			return nil, fmt.Errorf("decoding rooms: %w", err)
		}
		return rooms, nil
	}
	return nil, nil
}

// AddRoom appends a room to the startup list unless it is already there.
// Reports whether the list changed.
func AddRoom(configPath string, roomID uint64) (bool, error) {
	rooms, err := LoadRooms(configPath)
	if err != nil {
		return false, err
	}
	if slices.Contains(rooms, roomID) {
		return false, nil
	}
	return true, SaveRooms(configPath, append(rooms, roomID))
}

// RemoveRoom drops a room from the startup list.
// Reports whether the list changed.
func RemoveRoom(configPath string, roomID uint64) (bool, error) {
	rooms, err := LoadRooms(configPath)
	if err != nil {
		return false, err
	}
	idx := slices.Index(rooms, roomID)
	if idx < 0 {
		return false, nil
	}
	return true, SaveRooms(configPath, slices.Delete(rooms, idx, idx+1))
}

// SaveRooms updates the rooms list in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveRooms(configPath string, rooms []uint64) error {
	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	roomsNode := buildRoomsNode(rooms)

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty, comment-only or new file - create document structure
		doc = &yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "rooms"},
						roomsNode,
					},
				},
			},
		}
	} else if root := rootMapping(doc); root != nil {
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == "rooms" {
				root.Content[i+1] = roomsNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "rooms"},
				roomsNode,
			)
		}
	} else {
		return fmt.Errorf("config %s: top level is not a mapping", configPath)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}

	log.Info(log.CatConfig, "Saved rooms", "path", configPath, "count", len(rooms))
	return nil
}

func readDocument(configPath string) (*yaml.Node, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path is the user's config file
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	return &doc, nil
}

// rootMapping returns the top-level mapping of a document, or nil.
// A document holding only comments has no content.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	if root := doc.Content[0]; root.Kind == yaml.MappingNode {
		return root
	}
	return nil
}

// buildRoomsNode creates a yaml.Node representing the rooms array.
func buildRoomsNode(rooms []uint64) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(rooms)),
	}
	for _, room := range rooms {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: strconv.FormatUint(room, 10),
		})
	}
	return node
}

// writeAtomic writes to a temp file in the same directory, then renames it.
func writeAtomic(configPath string, data []byte) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
