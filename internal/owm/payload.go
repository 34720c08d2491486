// ABOUTME: OpenWeatherMap current-weather payload types.
// ABOUTME: Field set mirrors the provider JSON; optional blocks are pointers.
package owm

// Coord is the geographic position of the reporting station.
type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Condition is one entry of the payload's weather array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Readings is the payload's main block of numeric observations,
// in metric units (we always request units=metric).
type Readings struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

// Wind is the payload's wind block.
type Wind struct {
	Speed float64 `json:"speed"`
	Deg   *int    `json:"deg,omitempty"`
}

// Clouds is the payload's cloud-coverage block.
type Clouds struct {
	All int `json:"all"`
}

// Sys carries the country code.
type Sys struct {
	Country string `json:"country"`
}

// CurrentWeather is one current-weather response for one city.
// Dt is the observation instant in unix seconds; Timezone is the
// city's offset east of UTC in seconds.
type CurrentWeather struct {
	Coord      Coord       `json:"coord"`
	Weather    []Condition `json:"weather"`
	Main       Readings    `json:"main"`
	Visibility *int        `json:"visibility,omitempty"`
	Wind       *Wind       `json:"wind,omitempty"`
	Clouds     *Clouds     `json:"clouds,omitempty"`
	Dt         int64       `json:"dt"`
	Sys        Sys         `json:"sys"`
	Timezone   *int        `json:"timezone,omitempty"`
	Name       string      `json:"name"`
	Cod        int         `json:"cod,omitempty"`
}
