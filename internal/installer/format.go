package installer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/asteroid-belt/idapm/internal/models"
)

// DescriptorFiles are the modern plugin descriptors, in lookup order.
var DescriptorFiles = []string{"ida-plugin.json", "plugins.json"}

// DefaultEntryPoint is assumed when a descriptor names none.
const DefaultEntryPoint = "plugin.py"

// legacyMarkers identify a script as an IDA plugin.
var legacyMarkers = []string{"PLUGIN_ENTRY", "IDAPEnter", "IDP_init"}

// PluginInfo describes the plugin found at an install path.
type PluginInfo struct {
	Format        models.Format
	Name          string
	Version       string
	EntryPoint    string
	Descriptor    string // descriptor file name, modern plugins only
	IDAVersionMin string
	IDAVersionMax string
}

type descriptorFields struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	EntryPoint      string `json:"entry_point"`
	EntryPointCamel string `json:"entryPoint"`
	IDAVersionMin   string `json:"ida_version_min"`
	IDAVersionMax   string `json:"ida_version_max"`
	IDAVersions     string `json:"idaVersions"`
}

// descriptorFile accepts both the flat layout and the nested "plugin" object
// used by ida-plugin.json.
type descriptorFile struct {
	descriptorFields
	Plugin *descriptorFields `json:"plugin"`
}

// DetectFormat inspects path and classifies the plugin it holds. A descriptor
// with a name, a version and an existing entry point is modern; a Python file
// carrying an IDA entry marker, or a lone Python file, is legacy. A single
// .py file path is legacy.
func DetectFormat(path string) (*PluginInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	if !fi.IsDir() {
		if strings.EqualFold(filepath.Ext(path), ".py") {
			return &PluginInfo{Format: models.FormatLegacy, EntryPoint: filepath.Base(path)}, nil
		}
		return nil, fmt.Errorf("%w: %s is not a Python file", ErrInvalidStructure, filepath.Base(path))
	}

	for _, name := range DescriptorFiles {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			continue
		}
		return parseDescriptor(path, name, data)
	}

	scripts, _ := filepath.Glob(filepath.Join(path, "*.py"))
	for _, script := range scripts {
		data, err := os.ReadFile(script)
		if err != nil {
			continue
		}
		for _, marker := range legacyMarkers {
			if strings.Contains(string(data), marker) {
				return &PluginInfo{Format: models.FormatLegacy, EntryPoint: filepath.Base(script)}, nil
			}
		}
	}
	if len(scripts) == 1 {
		return &PluginInfo{Format: models.FormatLegacy, EntryPoint: filepath.Base(scripts[0])}, nil
	}

	return nil, ErrInvalidStructure
}

func parseDescriptor(dir, name string, data []byte) (*PluginInfo, error) {
	var raw descriptorFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", ErrInvalidStructure, name, err)
	}
	d := raw.descriptorFields
	if raw.Plugin != nil {
		d = *raw.Plugin
	}
	if d.Name == "" || d.Version == "" {
		return nil, fmt.Errorf("%w: invalid %s: missing required fields", ErrInvalidStructure, name)
	}

	entry := d.EntryPoint
	if entry == "" {
		entry = d.EntryPointCamel
	}
	if entry == "" {
		entry = DefaultEntryPoint
	}
	if _, err := os.Stat(filepath.Join(dir, entry)); err != nil {
		return nil, fmt.Errorf("%w: entry point %s not found", ErrInvalidStructure, entry)
	}

	info := &PluginInfo{
		Format:        models.FormatModern,
		Name:          d.Name,
		Version:       d.Version,
		EntryPoint:    entry,
		Descriptor:    name,
		IDAVersionMin: d.IDAVersionMin,
		IDAVersionMax: d.IDAVersionMax,
	}
	if d.IDAVersions != "" {
		min, max := ParseVersionSpec(d.IDAVersions)
		if info.IDAVersionMin == "" {
			info.IDAVersionMin = min
		}
		if info.IDAVersionMax == "" {
			info.IDAVersionMax = max
		}
	}
	return info, nil
}

var specClause = regexp.MustCompile(`(>=|<=|==|>|<|=)?\s*(\d+(?:\.\d+)*)`)

// ParseVersionSpec turns a constraint such as ">=9.0", ">=9.0,<=9.2" or "9.1"
// into inclusive min and max bounds. Strict operators are treated as inclusive.
func ParseVersionSpec(spec string) (min, max string) {
	for _, m := range specClause.FindAllStringSubmatch(spec, -1) {
		switch m[1] {
		case ">=", ">":
			min = m[2]
		case "<=", "<":
			max = m[2]
		default:
			min, max = m[2], m[2]
		}
	}
	return min, max
}
