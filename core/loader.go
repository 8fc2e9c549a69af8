package core

import (
	"fmt"
	"sort"
	"strings"
)

type ModLoader struct {
	Name         string
	FriendlyName string
	// Loaders whose artifacts also run on this one
	Compatible []string
}

var ModLoaders = map[string]ModLoader{
	"fabric": {
		Name:         "fabric",
		FriendlyName: "Fabric loader",
	},
	"forge": {
		Name:         "forge",
		FriendlyName: "Forge",
	},
	"liteloader": {
		Name:         "liteloader",
		FriendlyName: "LiteLoader",
	},
	"quilt": {
		Name:         "quilt",
		FriendlyName: "Quilt loader",
		Compatible:   []string{"fabric"},
	},
	"neoforge": {
		Name:         "neoforge",
		FriendlyName: "NeoForge",
		Compatible:   []string{"forge"},
	},
}

func ComponentToFriendlyName(component string) string {
	if component == "minecraft" {
		return "Minecraft"
	}
	loader, ok := ModLoaders[component]
	if ok {
		return loader.FriendlyName
	} else {
		return component
	}
}

func KnownLoaders() []string {
	names := make([]string, 0, len(ModLoaders))
	for name := range ModLoaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLoaders normalizes a list of loader names, dropping blanks and duplicates
func ParseLoaders(values []string) ([]string, error) {
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := ModLoaders[v]; !ok {
			return nil, fmt.Errorf("unknown loader %q, must be one of %s", v, strings.Join(KnownLoaders(), ", "))
		}
		if !containsString(out, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// CompatibleLoaders expands loaders with the ones they can also run artifacts for
func CompatibleLoaders(loaders []string) []string {
	var out []string
	for _, l := range loaders {
		if !containsString(out, l) {
			out = append(out, l)
		}
		for _, c := range ModLoaders[l].Compatible {
			if !containsString(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
