package dictionary

const (
	// DefaultSignatureField is the field rendered as a signature action.
	DefaultSignatureField = "csign"
	// DefaultRootKey is the key of the outermost rendered collection.
	DefaultRootKey = "data"
)

// Default returns the built-in activity/inventory rules.
func Default() Rules {
	astatus := NewEnum(
		State{Label: "pending", Translation: "Pending", Outs: []string{"started", "cancelled"}, Color: "#FFDE00"},
		State{Label: "started", Translation: "Started", Outs: []string{"complete", "suspended", "notdone", "cancelled"}, Color: "#A2DE61"},
		State{Label: "complete", Translation: "Completed", Color: "#79B6EB"},
		State{Label: "suspended", Translation: "Suspended", Color: "#9FF"},
		State{Label: "notdone", Translation: "Not done", Color: "#60CECE"},
		State{Label: "cancelled", Translation: "Cancelled", Color: "#80FF80"},
	)
	invpool := NewEnum(
		State{Label: "customer", Translation: "Customer", Outs: []string{"deinstall"}, Color: "#04D330"},
		State{Label: "install", Translation: "Installed", Outs: []string{"provider"}, Color: "#00A6F0"},
		State{Label: "deinstall", Translation: "Deinstalled", Outs: []string{"customer"}, Color: "#00F8E8"},
		State{Label: "provider", Translation: "Resource", Outs: []string{"install"}, Color: "#FFE43B"},
	)

	return NewRules(RulesConfig{
		Enums: NewDictionary(
			[]string{"astatus", "invpool"},
			map[string]Enum{"astatus": astatus, "invpool": invpool},
		),
		ReadOnly: NewPairSet(map[string][]string{
			"data":     {"apiVersion", "method", "entity"},
			"resource": {"pid", "pname", "gender"},
		}),
		Mandatory: NewPairSet(map[string][]string{
			"activity":  {"aid"},
			"inventory": {"invid"},
		}),
		SignatureField: DefaultSignatureField,
		RootKey:        DefaultRootKey,
		StrippedKeys:   []string{"entity", "resource"},
	})
}
