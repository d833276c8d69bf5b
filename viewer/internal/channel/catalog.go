package channel

// NoDescription is shown for channels missing from the catalog.
const NoDescription = "no description available"

// Catalog maps 10-20 system channel labels to plain-language locations.
var Catalog = map[string]string{
	"Fp1": "Frontopolar left (near forehead)",
	"Fp2": "Frontopolar right (near forehead)",
	"AF3": "Anterior frontal left",
	"AF4": "Anterior frontal right",
	"AF7": "Anterior frontal left (lateral)",
	"AF8": "Anterior frontal right (lateral)",
	"Fz":  "Frontal midline",
	"F1":  "Frontal left mid",
	"F2":  "Frontal right mid",
	"F3":  "Frontal left",
	"F4":  "Frontal right",
	"FC1": "Frontal-central left",
	"FC2": "Frontal-central right",
	"Cz":  "Central midline (top of head)",
	"C3":  "Central left",
	"C4":  "Central right",
	"CP1": "Central-parietal left",
	"CP2": "Central-parietal right",
	"Pz":  "Parietal midline",
	"P3":  "Parietal left",
	"P4":  "Parietal right",
	"O1":  "Occipital left (visual area)",
	"O2":  "Occipital right (visual area)",
	"Oz":  "Occipital midline",
	"T7":  "Temporal left",
	"T8":  "Temporal right",
	"POz": "Parieto-occipital midline",
}

// Description pairs a channel label with its catalog text.
type Description struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Describe returns one description per channel, in the given order.
func Describe(channels []string) []Description {
	out := make([]Description, 0, len(channels))
	for _, ch := range channels {
		text, ok := Catalog[ch]
		if !ok {
			text = NoDescription
		}
		out = append(out, Description{Label: ch, Text: text})
	}
	return out
}
