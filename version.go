package sasvalidator

// Version is the library version.
const Version = "0.1.0"

// SchemaRelease identifies a release of the SAS-SAS exchange schema set.
type SchemaRelease string

// Supported schema releases.
const (
	// V1 is the initial SAS-SAS record exchange schema release.
	V1 SchemaRelease = "v1"
)

// String returns the release string.
func (r SchemaRelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported schema release.
func (r SchemaRelease) IsValid() bool {
	switch r {
	case V1:
		return true
	default:
		return false
	}
}

// releaseConfig holds release-specific schema file names.
type releaseConfig struct {
	RecordSchemaFile  string
	ContactSchemaFile string
	FccSchemaFile     string
}

// releaseConfigs maps schema releases to their configurations.
var releaseConfigs = map[SchemaRelease]releaseConfig{
	V1: {
		RecordSchemaFile:  "SasImplementationRecord.schema.json",
		ContactSchemaFile: "ContactInformation.schema.json",
		FccSchemaFile:     "FccInformation.schema.json",
	},
}

// RecordSchemaFile returns the canonical record schema file name for the release.
func (r SchemaRelease) RecordSchemaFile() string {
	return releaseConfigs[r].RecordSchemaFile
}
