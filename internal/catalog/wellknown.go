package catalog

// SeedBrand is one brand and its popular references.
type SeedBrand struct {
	Name    string
	Slug    string
	Watches []SeedWatch
}

// SeedWatch is one catalog reference.
type SeedWatch struct {
	Ref        string
	Model      string
	Collection string
	SizeMM     int
}

// WellKnown is the default catalog: popular references per brand, scanned
// when no custom catalog is loaded.
var WellKnown = []SeedBrand{
	{
		Name: "Rolex",
		Slug: "rolex",
		Watches: []SeedWatch{
			{Ref: "126610LN", Model: "Submariner Date", Collection: "Submariner", SizeMM: 41},
			{Ref: "126610LV", Model: "Submariner Date Kermit", Collection: "Submariner", SizeMM: 41},
			{Ref: "124060", Model: "Submariner No Date", Collection: "Submariner", SizeMM: 41},
			{Ref: "126711CHNR", Model: "GMT-Master II Root Beer", Collection: "GMT-Master", SizeMM: 40},
			{Ref: "126710BLRO", Model: "GMT-Master II Pepsi", Collection: "GMT-Master", SizeMM: 40},
			{Ref: "126710BLNR", Model: "GMT-Master II Batman", Collection: "GMT-Master", SizeMM: 40},
			{Ref: "116500LN", Model: "Daytona", Collection: "Daytona", SizeMM: 40},
			{Ref: "126334", Model: "Datejust 41", Collection: "Datejust", SizeMM: 41},
			{Ref: "226570", Model: "Explorer II", Collection: "Explorer", SizeMM: 42},
			{Ref: "124270", Model: "Explorer", Collection: "Explorer", SizeMM: 36},
		},
	},
	{
		Name: "Patek Philippe",
		Slug: "patek-philippe",
		Watches: []SeedWatch{
			{Ref: "5711/1A-010", Model: "Nautilus Blue", Collection: "Nautilus", SizeMM: 40},
			{Ref: "5712/1A-001", Model: "Nautilus Power Reserve", Collection: "Nautilus", SizeMM: 40},
			{Ref: "5167A-001", Model: "Aquanaut", Collection: "Aquanaut", SizeMM: 40},
			{Ref: "5168G-001", Model: "Aquanaut Travel Time", Collection: "Aquanaut", SizeMM: 42},
			{Ref: "5726/1A-014", Model: "Nautilus Annual Calendar", Collection: "Nautilus", SizeMM: 40},
			{Ref: "5205G-001", Model: "Complications Annual Calendar", Collection: "Complications", SizeMM: 40},
		},
	},
	{
		Name: "Audemars Piguet",
		Slug: "audemars-piguet",
		Watches: []SeedWatch{
			{Ref: "15500ST.OO.1220ST.01", Model: "Royal Oak Blue", Collection: "Royal Oak", SizeMM: 41},
			{Ref: "15500ST.OO.1220ST.02", Model: "Royal Oak Black", Collection: "Royal Oak", SizeMM: 41},
			{Ref: "15500ST.OO.1220ST.04", Model: "Royal Oak Grey", Collection: "Royal Oak", SizeMM: 41},
			{Ref: "26331ST.OO.1220ST.01", Model: "Royal Oak Chrono Blue", Collection: "Royal Oak", SizeMM: 41},
			{Ref: "15202ST.OO.1240ST.01", Model: "Royal Oak Jumbo", Collection: "Royal Oak", SizeMM: 39},
			{Ref: "26470ST.OO.A801CR.01", Model: "Royal Oak Offshore", Collection: "Royal Oak Offshore", SizeMM: 42},
		},
	},
	{
		Name: "Omega",
		Slug: "omega",
		Watches: []SeedWatch{
			{Ref: "310.30.42.50.01.001", Model: "Speedmaster Moonwatch", Collection: "Speedmaster", SizeMM: 42},
			{Ref: "310.30.42.50.01.002", Model: "Speedmaster Sapphire", Collection: "Speedmaster", SizeMM: 42},
			{Ref: "210.30.42.20.01.001", Model: "Seamaster Diver 300M Black", Collection: "Seamaster", SizeMM: 42},
			{Ref: "210.30.42.20.03.001", Model: "Seamaster Diver 300M Blue", Collection: "Seamaster", SizeMM: 42},
			{Ref: "220.10.41.21.01.001", Model: "Aqua Terra Black", Collection: "Seamaster", SizeMM: 41},
		},
	},
	{
		Name: "Tudor",
		Slug: "tudor",
		Watches: []SeedWatch{
			{Ref: "79230N", Model: "Black Bay", Collection: "Black Bay", SizeMM: 41},
			{Ref: "79230R", Model: "Black Bay Red", Collection: "Black Bay", SizeMM: 41},
			{Ref: "M79360N-0001", Model: "Black Bay Chrono", Collection: "Black Bay", SizeMM: 41},
			{Ref: "M79830RB-0001", Model: "Black Bay GMT", Collection: "Black Bay", SizeMM: 41},
			{Ref: "M25600TN-0001", Model: "Pelagos", Collection: "Pelagos", SizeMM: 42},
			{Ref: "79500-0001", Model: "Black Bay 58", Collection: "Black Bay", SizeMM: 39},
		},
	},
	{
		Name: "Cartier",
		Slug: "cartier",
		Watches: []SeedWatch{
			{Ref: "WSSA0018", Model: "Santos Medium", Collection: "Santos", SizeMM: 35},
			{Ref: "WSSA0030", Model: "Santos Large", Collection: "Santos", SizeMM: 40},
			{Ref: "WGCA0006", Model: "Calibre de Cartier", Collection: "Calibre", SizeMM: 42},
		},
	},
}
