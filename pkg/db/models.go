package db

// Column headers match the campus spreadsheet, which is filled by the intake
// form and read by the administration, hence the Russian names.

// StudentRow represents a row of the students tab
type StudentRow struct {
	Name        string  `sheet:"ФИО"`
	Gender      string  `sheet:"Пол"`
	Institute   string  `sheet:"Институт"`
	SVO         int     `sheet:"СВО"`
	ChAES       int     `sheet:"ЧАЭС"`
	Disability  int     `sheet:"Инвалидность"`
	Smoking     int     `sheet:"Курение"`
	Distance    float64 `sheet:"Расстояние"`
	LargeFamily int     `sheet:"Многодетная семья"`
}

// WeightRow represents a row of the institute weights tab
type WeightRow struct {
	Institute      string  `sheet:"Институт"`
	InstituteScore float64 `sheet:"Баллы за институт"`
	SVO            float64 `sheet:"СВО"`
	ChAES          float64 `sheet:"ЧАЭС"`
	Disability     float64 `sheet:"Инвалидность"`
	Smoking        float64 `sheet:"Курение"`
	Distance       float64 `sheet:"Расстояние"`
	LargeFamily    float64 `sheet:"Многодетная семья"`
}

// ResultRow represents a row of the results tab. Scores are rounded for
// presentation here and only here; the engine keeps full precision.
type ResultRow struct {
	Name             string  `sheet:"ФИО"`
	Gender           string  `sheet:"Пол"`
	InstituteScore   float64 `sheet:"Баллы за институт"`
	SVOScore         float64 `sheet:"СВО"`
	ChAESScore       float64 `sheet:"ЧАЭС"`
	DisabilityScore  float64 `sheet:"Инвалидность"`
	SmokingScore     float64 `sheet:"Курение"`
	DistanceScore    float64 `sheet:"Расстояние"`
	LargeFamilyScore float64 `sheet:"Многодетная семья"`
	TotalScore       float64 `sheet:"Общий балл"`
	Priority         string  `sheet:"Приоритет"`
}
