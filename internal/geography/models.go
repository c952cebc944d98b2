package geography

// Geometry columns hold PostGIS geometries in SRID 4326. The API only ever
// reads them through ST_AsGeoJSON, so the models carry them as raw text.

type State struct {
	Name     string `gorm:"primaryKey" json:"name"`
	Geometry string `gorm:"type:geometry(Geometry,4326);not null" json:"-"`
}

func (State) TableName() string { return "geo.states" }

type County struct {
	State    string `gorm:"primaryKey" json:"state"`
	Name     string `gorm:"primaryKey" json:"name"`
	Geometry string `gorm:"type:geometry(Geometry,4326);not null" json:"-"`
}

func (County) TableName() string { return "geo.counties" }

// District is the shape shared by assembly, senate and congressional
// districts. Boundaries are redrawn, so every district is scoped by year.
type District struct {
	State    string `gorm:"primaryKey" json:"state"`
	Year     string `gorm:"primaryKey" json:"year"`
	Name     string `gorm:"primaryKey" json:"name"`
	Geometry string `gorm:"type:geometry(Geometry,4326);not null" json:"-"`
}

type Assembly struct{ District }

func (Assembly) TableName() string { return "geo.assemblies" }

type Senate struct{ District }

func (Senate) TableName() string { return "geo.senates" }

type Congressional struct{ District }

func (Congressional) TableName() string { return "geo.congressionals" }

// Ward is the atomic unit. It names the county and the districts it lies in
// for its year.
type Ward struct {
	State         string `gorm:"primaryKey" json:"state"`
	Year          string `gorm:"primaryKey" json:"year"`
	Name          string `gorm:"primaryKey" json:"name"`
	County        string `gorm:"not null;index:idx_wards_county" json:"county"`
	Assembly      string `gorm:"not null;index:idx_wards_assembly" json:"assembly"`
	Senate        string `gorm:"not null;index:idx_wards_senate" json:"senate"`
	Congressional string `gorm:"not null;index:idx_wards_congressional" json:"congressional"`
	Geometry      string `gorm:"type:geometry(Geometry,4326);not null" json:"-"`
}

func (Ward) TableName() string { return "geo.wards" }

// Vote is one ward's tally for a race. WardYear is the boundary year of the
// ward the tally was reported against, which may differ from the election year.
type Vote struct {
	State        string `gorm:"primaryKey" json:"state"`
	Race         string `gorm:"primaryKey" json:"race"`
	Year         string `gorm:"primaryKey" json:"year"`
	WardYear     string `gorm:"primaryKey" json:"ward_year"`
	Ward         string `gorm:"primaryKey" json:"ward"`
	Total        int64  `gorm:"not null;default:0" json:"total"`
	Democrat     int64  `gorm:"not null;default:0" json:"democrat"`
	Republican   int64  `gorm:"not null;default:0" json:"republican"`
	Green        int64  `gorm:"not null;default:0" json:"green"`
	Libertarian  int64  `gorm:"not null;default:0" json:"libertarian"`
	Constitution int64  `gorm:"not null;default:0" json:"constitution"`
	Independent  int64  `gorm:"not null;default:0" json:"independent"`
	Scatter      int64  `gorm:"not null;default:0" json:"scatter"`
}

func (Vote) TableName() string { return "geo.votes" }

type Population struct {
	State                string `gorm:"primaryKey" json:"state"`
	Year                 string `gorm:"primaryKey" json:"year"`
	WardYear             string `gorm:"primaryKey" json:"ward_year"`
	Ward                 string `gorm:"primaryKey" json:"ward"`
	Total                int64  `gorm:"not null;default:0" json:"total"`
	TotalAdult           int64  `gorm:"not null;default:0" json:"total_adult"`
	White                int64  `gorm:"not null;default:0" json:"white"`
	WhiteAdult           int64  `gorm:"not null;default:0" json:"white_adult"`
	Black                int64  `gorm:"not null;default:0" json:"black"`
	BlackAdult           int64  `gorm:"not null;default:0" json:"black_adult"`
	AmericanIndian       int64  `gorm:"not null;default:0" json:"american_indian"`
	AmericanIndianAdult  int64  `gorm:"not null;default:0" json:"american_indian_adult"`
	Asian                int64  `gorm:"not null;default:0" json:"asian"`
	AsianAdult           int64  `gorm:"not null;default:0" json:"asian_adult"`
	PacificIslander      int64  `gorm:"not null;default:0" json:"pacific_islander"`
	PacificIslanderAdult int64  `gorm:"not null;default:0" json:"pacific_islander_adult"`
	Hispanic             int64  `gorm:"not null;default:0" json:"hispanic"`
	HispanicAdult        int64  `gorm:"not null;default:0" json:"hispanic_adult"`
	Other                int64  `gorm:"not null;default:0" json:"other"`
	OtherAdult           int64  `gorm:"not null;default:0" json:"other_adult"`
}

func (Population) TableName() string { return "geo.populations" }
