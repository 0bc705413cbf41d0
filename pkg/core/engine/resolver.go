package engine

import "github.com/ntsvetkov/campus-manager/pkg/core/model"

// Resolve returns the weight profile for the given institute, falling back to
// the profile under defaultKey when no exact match exists. The second return
// value reports whether the fallback was taken.
//
// A missing default profile is a *ConfigurationError; an unrecognized
// institute is not an error.
func Resolve(table model.WeightTable, institute, defaultKey string) (model.WeightProfile, bool, error) {
	if profile, ok := table[institute]; ok {
		return profile, false, nil
	}

	profile, ok := table[defaultKey]
	if !ok {
		return model.WeightProfile{}, false, &ConfigurationError{
			Reason: "default weight profile " + defaultKey + " missing from weight table",
		}
	}
	return profile, true, nil
}
