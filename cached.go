package distroalias

// CachedActiveAliases returns a pre-fetched alias table containing only the
// active (maintained) openSUSE releases.
//
// The table is what the opensuse resolver returns when EOL releases are
// excluded, except that the Version of Tumbleweed is cleared. It is updated by
// hand and carries no staleness detection; compare against a fresh resolve to
// check it.
//
// The returned table is a copy and may be modified by the caller.
func CachedActiveAliases() AliasTable {
	return cachedActive.Clone()
}

var cachedActive = AliasTable{
	{
		Key: "opensuse-leap-all",
		Distros: []Distro{
			{
				Name:    "openSUSE Leap",
				Version: "16.0",
				NameVer: "opensuse-leap-16.0",
				Active:  true,
			},
			{
				Name:           "openSUSE Leap",
				Version:        "15.6",
				NameVer:        "opensuse-leap-15.6",
				OBSProjectName: "openSUSE:Leap:15.6",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap",
				Version:        "15.5",
				NameVer:        "opensuse-leap-15.5",
				OBSProjectName: "openSUSE:Leap:15.5",
				Active:         true,
			},
		},
	},
	{
		Key: "opensuse-leap-micro-all",
		Distros: []Distro{
			{
				Name:           "openSUSE Leap Micro",
				Version:        "6.1",
				NameVer:        "opensuse-leap-micro-6.1",
				OBSProjectName: "openSUSE:Leap:Micro:6.1",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap Micro",
				Version:        "6.0",
				NameVer:        "opensuse-leap-micro-6.0",
				OBSProjectName: "openSUSE:Leap:Micro:6.0",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap Micro",
				Version:        "5.5",
				NameVer:        "opensuse-leap-micro-5.5",
				OBSProjectName: "openSUSE:Leap:Micro:5.5",
				Active:         true,
			},
		},
	},
	{
		Key: "opensuse-tumbleweed-all",
		Distros: []Distro{
			{
				Name:           "openSUSE Tumbleweed",
				Version:        "",
				NameVer:        TumbleweedNameVer,
				OBSProjectName: TumbleweedProject,
				Active:         true,
			},
		},
	},
	{
		Key: AllAlias,
		Distros: []Distro{
			{
				Name:    "openSUSE Leap",
				Version: "16.0",
				NameVer: "opensuse-leap-16.0",
				Active:  true,
			},
			{
				Name:           "openSUSE Leap",
				Version:        "15.6",
				NameVer:        "opensuse-leap-15.6",
				OBSProjectName: "openSUSE:Leap:15.6",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap",
				Version:        "15.5",
				NameVer:        "opensuse-leap-15.5",
				OBSProjectName: "openSUSE:Leap:15.5",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap Micro",
				Version:        "6.1",
				NameVer:        "opensuse-leap-micro-6.1",
				OBSProjectName: "openSUSE:Leap:Micro:6.1",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap Micro",
				Version:        "6.0",
				NameVer:        "opensuse-leap-micro-6.0",
				OBSProjectName: "openSUSE:Leap:Micro:6.0",
				Active:         true,
			},
			{
				Name:           "openSUSE Leap Micro",
				Version:        "5.5",
				NameVer:        "opensuse-leap-micro-5.5",
				OBSProjectName: "openSUSE:Leap:Micro:5.5",
				Active:         true,
			},
			{
				Name:           "openSUSE Tumbleweed",
				Version:        "",
				NameVer:        TumbleweedNameVer,
				OBSProjectName: TumbleweedProject,
				Active:         true,
			},
		},
	},
}
