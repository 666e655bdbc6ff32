package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Composer holds the identity-related fields of a local manifest file.
type Composer struct {
	Name        string
	Version     string
	PluginClass string
}

// Descriptor holds the fields of a local plugin descriptor file.
type Descriptor struct {
	Name    string `xml:"name"`
	Version string `xml:"version"`
}

// ReadComposerFile parses the manifest at path, reading the implementation class from classKey
// in the extra section.
func ReadComposerFile(path string, classKey string) (Composer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Composer{}, err
	}

	doc, err := decodeComposer(data)
	if err != nil {
		return Composer{}, err
	}

	return Composer{
		Name:        strings.TrimSpace(doc.Name),
		Version:     strings.TrimSpace(doc.Version),
		PluginClass: doc.pluginClass(classKey),
	}, nil
}

// ReadDescriptorFile parses the plugin descriptor at path.
func ReadDescriptorFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}

	var d Descriptor
	if err := xml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("failed to decode %s: %w", DescriptorFile, err)
	}

	d.Name = strings.TrimSpace(d.Name)
	d.Version = strings.TrimSpace(d.Version)

	return d, nil
}

// ClassName returns the last backslash-separated segment of a fully qualified class name.
//
//	ClassName(`Acme\Widget\AcmeWidget`) == "AcmeWidget"
func ClassName(pluginClass string) string {
	pluginClass = strings.Trim(strings.TrimSpace(pluginClass), `\`)
	if i := strings.LastIndex(pluginClass, `\`); i >= 0 {
		return pluginClass[i+1:]
	}
	return pluginClass
}
