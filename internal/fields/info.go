package fields

// Info describes a field for the weather_fields_info tool.
type Info struct {
	Description string `json:"description"`
	Unit        string `json:"unit"`
	MaxDays     string `json:"maxDays"`
}

var info = map[Region]map[string]Info{
	RegionGlobal: {
		"ws100m": {Description: "100m wind speed", Unit: "m/s", MaxDays: "10/15/30/45"},
		"t2m":    {Description: "2m temperature", Unit: "°C", MaxDays: "10/15/30/45"},
		"rh2m":   {Description: "2m relative humidity", Unit: "%", MaxDays: "10/15/30/45"},
		"tp":     {Description: "precipitation", Unit: "mm/hr", MaxDays: "10/15/30/45"},
		"ssrd":   {Description: "surface solar radiation downwards", Unit: "W/㎡", MaxDays: "10/15/30/45"},
		"slp":    {Description: "sea level pressure", Unit: "mb", MaxDays: "10/15/30"},
		"cldt":   {Description: "total cloud cover", Unit: "1", MaxDays: "10/15/30/45"},
		"gust":   {Description: "wind gust", Unit: "m/s", MaxDays: "10"},
	},
	RegionChina: {
		"ws30m": {Description: "30m wind speed", Unit: "m/s", MaxDays: "10/15/30/45"},
		"ws50m": {Description: "50m wind speed", Unit: "m/s", MaxDays: "10/15/30"},
		"ws70m": {Description: "70m wind speed", Unit: "m/s", MaxDays: "10"},
		"u30m":  {Description: "30m zonal wind", Unit: "m/s", MaxDays: "10/15/30/45"},
		"v30m":  {Description: "30m meridional wind", Unit: "m/s", MaxDays: "10/15/30/45"},
	},
}

// InfoFor returns the described fields of a region. Unknown regions get the
// global table.
func InfoFor(r Region) map[string]Info {
	table, ok := info[r]
	if !ok {
		table = info[RegionGlobal]
	}
	out := make(map[string]Info, len(table))
	for code, i := range table {
		out[code] = i
	}
	return out
}
