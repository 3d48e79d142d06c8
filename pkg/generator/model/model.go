package model

import (
	"k8s.io/klog/v2"

	"gensetgateway/pkg/generator/runtime"
)

// RegisterMaps are the compiled in controller maps keyed by brand.
var RegisterMaps = map[runtime.Brand]*runtime.RegisterMap{
	runtime.BrandGenerac: generacRegisterMap(),
	runtime.BrandKohler:  kohlerRegisterMap(),
	runtime.BrandCummins: cumminsRegisterMap(),
	runtime.BrandMebay:   mebayRegisterMap(),
}

// ForBrand resolves the register map for a profile. An unrecognized brand
// runs on the Generac map; the effective config surfaces the substitution
// through the differing map brand.
func ForBrand(profile *runtime.GeneratorProfile) (*runtime.RegisterMap, error) {
	if brand, ok := runtime.StringToBrand[profile.Brand]; ok {
		if brand == runtime.BrandCustom {
			return compileCustom(profile)
		}
		return RegisterMaps[brand], nil
	}

	klog.V(1).InfoS("Unrecognized generator brand, falling back to the generic register map",
		"brand", profile.Brand, "mapBrand", runtime.BrandToString[runtime.BrandGenerac])
	return RegisterMaps[runtime.BrandGenerac], nil
}

func compileCustom(profile *runtime.GeneratorProfile) (*runtime.RegisterMap, error) {
	points := make([]*runtime.RegisterPoint, 0, len(profile.CustomPoints))
	for _, point := range profile.CustomPoints {
		p := *point
		points = append(points, &p)
	}

	m := &runtime.RegisterMap{
		Brand:        runtime.BrandCustom,
		MemoryLayout: profile.MemoryLayout,
		Points:       points,
	}
	m.Index()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
