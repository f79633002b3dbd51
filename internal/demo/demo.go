// ABOUTME: Deterministic synthetic dataset: four weeks omnivore, four weeks vegan.
// ABOUTME: Phase-shifted baselines plus clamped Gaussian noise from a seeded PCG source.
package demo

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// Days is the length of the scenario; the first half is omnivore.
const Days = 56

// Note marks every synthetic row.
const (
	Note      = "DEMO (synthetisch) – Szenario nach Literatur, kein Messwert"
	SportNote = "DEMO (synthetisch) – keine Aussage zur Leistungsfähigkeit"
)

// Dataset holds replacement content for all four tables.
type Dataset struct {
	Daily     []models.DailyRecord
	Nutrition []models.NutritionRecord
	Sport     []models.SportTestRecord
	Blood     []models.BloodTestRecord
}

type generator struct {
	src rand.Source
}

func (g *generator) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.src}.Rand()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clone(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return models.Float(*p)
}

// whole truncates toward zero like an integer cast.
func whole(v float64) float64 {
	return math.Trunc(v)
}

// Generate builds the scenario starting at start (day 1). The same seed and
// start always produce the same values; now only sets last_modified.
func Generate(seed uint64, start, now time.Time) *Dataset {
	g := &generator{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
	start = schema.Day(start)
	stamp := schema.Stamp(now)

	ds := &Dataset{}
	for day := 1; day <= Days; day++ {
		ds.Daily = append(ds.Daily, g.daily(start.AddDate(0, 0, day-1), day > Days/2, stamp))
	}
	for i := range ds.Daily {
		ds.Nutrition = append(ds.Nutrition, nutrition(&ds.Daily[i], i, stamp))
	}
	ds.Blood = g.blood(start, stamp)
	ds.Sport = g.sport(start, stamp)
	return ds
}

func (g *generator) daily(date time.Time, vegan bool, stamp time.Time) models.DailyRecord {
	shift := func(v float64) float64 {
		if vegan {
			return v
		}
		return 0
	}
	phase := models.PhaseOmnivore
	if vegan {
		phase = models.PhaseVegan
	}

	bodyWeight := 75.0 + shift(-1.0) + g.normal(0, 0.2)
	bpSys := 125 + shift(-5) + g.normal(0, 2)
	bpDia := 80 + shift(-3) + g.normal(0, 2)

	sleepHours := clamp(7.2+g.normal(0, 0.6), 4.5, 9.5)
	sleepScore := whole(clamp(78+g.normal(0, 8), 40, 100))
	totalSteps := whole(clamp(8500+g.normal(0, 1800), 1000, 25000))
	kcalBurn := whole(clamp(2400+g.normal(0, 250), 1200, 5000))

	intake := whole(clamp(2400+shift(50)+g.normal(0, 150), 1200, 5000))
	carbs := whole(clamp(250+shift(20)+g.normal(0, 25), 0, 800))
	protein := whole(clamp(120+shift(-10)+g.normal(0, 15), 0, 400))
	fat := whole(clamp(80+shift(-5)+g.normal(0, 10), 0, 300))
	water := whole(clamp(2500+g.normal(0, 300), 0, 10000))

	hrvSleep := clamp(45+g.normal(0, 8), 15, 120)
	rhrSleep := clamp(55+g.normal(0, 6), 35, 95)
	rhrMin := clamp(rhrSleep-math.Abs(g.normal(4, 2)), 30, 90)
	spo2Sleep := clamp(96+g.normal(0, 1), 85, 100)
	spo2Min := clamp(spo2Sleep-math.Abs(g.normal(1.5, 0.8)), 80, 100)
	deepHours := clamp(1.6+g.normal(0, 0.3), 0.2, 3.5)
	deepPercent := clamp(20+g.normal(0, 4), 5, 45)
	awakenings := whole(clamp(2+math.Abs(g.normal(0, 1)), 0, 12))

	morningPulse := clamp(58+g.normal(0, 6), 35, 110)
	hrvDay := clamp(hrvSleep+g.normal(0, 4), 10, 140)
	spo2Day := clamp(96+g.normal(0, 1), 85, 100)
	stressAvg := clamp(35+g.normal(0, 10), 0, 100)
	stressPeak := clamp(stressAvg+math.Abs(g.normal(15, 10)), 0, 100)

	energy := clamp(7+shift(0.2)+g.normal(0, 0.7), 1, 10)
	mood := clamp(7+g.normal(0, 0.7), 1, 10)
	motivation := clamp(7+g.normal(0, 0.8), 1, 10)
	concentration := clamp(7+g.normal(0, 0.7), 1, 10)

	f := models.Float
	return models.DailyRecord{
		Date:             date,
		Phase:            phase,
		SleepHours:       f(round(sleepHours, 1)),
		SleepScore:       f(sleepScore),
		HRVSleepAvg:      f(round(hrvSleep, 1)),
		RHRSleepAvg:      f(round(rhrSleep, 1)),
		RHRSleepMin:      f(round(rhrMin, 1)),
		SpO2SleepAvg:     f(round(spo2Sleep, 1)),
		SpO2SleepMin:     f(round(spo2Min, 1)),
		DeepSleepHours:   f(round(deepHours, 2)),
		DeepSleepPercent: f(round(deepPercent, 1)),
		Awakenings:       f(awakenings),
		TotalSteps:       f(totalSteps),
		TotalKcalBurn:    f(kcalBurn),
		IntakeKcal:       f(intake),
		CarbsG:           f(carbs),
		ProteinG:         f(protein),
		FatG:             f(fat),
		WaterML:          f(water),
		MorningPulse:     f(round(morningPulse, 1)),
		HRVDayAvg:        f(round(hrvDay, 1)),
		SpO2DayAvg:       f(round(spo2Day, 1)),
		BPSys:            f(math.Round(bpSys)),
		BPDia:            f(math.Round(bpDia)),
		BodyWeight:       f(round(bodyWeight, 1)),
		StressAvg:        f(round(stressAvg, 1)),
		StressPeak:       f(round(stressPeak, 1)),
		Energy:           f(round(energy, 1)),
		Mood:             f(round(mood, 1)),
		Motivation:       f(round(motivation, 1)),
		Concentration:    f(round(concentration, 1)),
		Note:             models.String(Note),
		LastModified:     &stamp,
	}
}

var (
	omnivoreBreakfast = []string{
		"Haferflocken mit Milch und Beeren",
		"Rührei mit Speck und Toast",
		"Joghurt mit Müsli und Honig",
		"Vollkornbrot mit Butter und Käse",
	}
	omnivoreLunch = []string{
		"Hühnerschnitzel mit Kartoffelsalat",
		"Spaghetti Bolognese mit Parmesan",
		"Schnitzel mit Pommes und Salat",
		"Linsensuppe mit Wurst und Brot",
	}
	omnivoreDinner = []string{
		"Gebratenes Lachsfilet mit Reis und Gemüse",
		"Schweinebraten mit Knödeln und Sauerkraut",
		"Hähnchen-Curry mit Basmatireis",
		"Rindersteak mit Kartoffeln und Kräuterbutter",
	}
	omnivoreSnack1 = []string{"Apfel und Nüsse", "Joghurt", "Banane", "Müsliriegel"}
	omnivoreSnack2 = []string{"Vollkornbrot mit Käse", "Nüsse", "Topfen mit Beeren", "Butterbrot"}

	veganBreakfast = []string{
		"Haferflocken mit Sojamilch und Beeren",
		"Tofu-Rührei mit Vollkorntoast",
		"Sojajoghurt mit Müsli und Ahornsirup",
		"Vollkornbrot mit Avocado und Tomaten",
	}
	veganLunch = []string{
		"Linsen-Bolognese mit Vollkornnudeln",
		"Kichererbsen-Curry mit Basmatireis",
		"Gemüse-Eintopf mit Vollkornbrot",
		"Burger mit Sojafrikadelle und Salat",
	}
	veganDinner = []string{
		"Gebratenes Tofu mit Reis und Gemüse",
		"Veganes Chili mit Mais und Brot",
		"Gemüse-Quinoa-Pfanne mit Avocado",
		"Vegane Lasagne mit Tomatensauce",
	}
	veganSnacks = [][2]string{
		{"Banane und Nüsse", "Vollkornbrot mit Hummus"},
		{"Smoothie aus Banane, Haferdrink und Samen", "Sojajoghurt mit Nüssen"},
	}
)

const (
	omnivoreSupplements = "Multivitamin, Magnesium"
	veganSupplements    = "Vitamin B12, DHA (Algenöl), Vitamin D3"
)

// nutrition builds the diary entry for day index i, copying the intake
// fields of the daily row.
func nutrition(d *models.DailyRecord, i int, stamp time.Time) models.NutritionRecord {
	pick := func(list []string) *string { return models.String(list[i%len(list)]) }
	n := models.NutritionRecord{
		Date:          d.Date,
		Phase:         d.Phase,
		NutritionNote: models.String(Note),
		IntakeKcal:    clone(d.IntakeKcal),
		CarbsG:        clone(d.CarbsG),
		ProteinG:      clone(d.ProteinG),
		FatG:          clone(d.FatG),
		WaterML:       clone(d.WaterML),
		LastModified:  &stamp,
	}
	if d.Phase == models.PhaseOmnivore {
		n.Breakfast, n.Lunch, n.Dinner = pick(omnivoreBreakfast), pick(omnivoreLunch), pick(omnivoreDinner)
		n.Snack1, n.Snack2 = pick(omnivoreSnack1), pick(omnivoreSnack2)
		n.Supplements = models.String(omnivoreSupplements)
		return n
	}
	n.Breakfast, n.Lunch, n.Dinner = pick(veganBreakfast), pick(veganLunch), pick(veganDinner)
	snacks := veganSnacks[(i-Days/2)%len(veganSnacks)]
	n.Snack1, n.Snack2 = models.String(snacks[0]), models.String(snacks[1])
	n.Supplements = models.String(veganSupplements)
	return n
}

// bloodPanel holds the means of one lab panel; sigmas are shared.
type bloodPanel struct {
	hemoglobin, erythrocytes, thrombocytes, leukocytes, segment, lymphocytes  float64
	alat, asat, egfr, iron, transferrinSat, gammaGT, ap, ironSat, ebk         float64
	ferritin, transferrin, cholesterol, triglycerides, ldl, sodium, potassium float64
	tsh                                                                       float64
}

var (
	baselinePanel = bloodPanel{
		hemoglobin: 14.5, erythrocytes: 4.8, thrombocytes: 250, leukocytes: 6.5, segment: 55, lymphocytes: 30,
		alat: 25, asat: 22, egfr: 95, iron: 90, transferrinSat: 30, gammaGT: 20, ap: 65, ironSat: 250, ebk: 4.2,
		ferritin: 80, transferrin: 2.8, cholesterol: 210, triglycerides: 120, ldl: 130, sodium: 140, potassium: 4.2,
		tsh: 1.8,
	}
	veganPanel = bloodPanel{
		hemoglobin: 14.3, erythrocytes: 4.7, thrombocytes: 245, leukocytes: 6.3, segment: 54, lymphocytes: 31,
		alat: 23, asat: 20, egfr: 96, iron: 85, transferrinSat: 28, gammaGT: 18, ap: 62, ironSat: 240, ebk: 4.1,
		ferritin: 75, transferrin: 2.9, cholesterol: 190, triglycerides: 110, ldl: 115, sodium: 139, potassium: 4.1,
		tsh: 1.9,
	}
)

func (g *generator) blood(start, stamp time.Time) []models.BloodTestRecord {
	return []models.BloodTestRecord{
		g.panel(start, "Baseline (Omnivor)", baselinePanel, stamp),
		g.panel(start.AddDate(0, 0, Days-1), "Vegan-Test", veganPanel, stamp),
	}
}

func (g *generator) panel(date time.Time, testType string, p bloodPanel, stamp time.Time) models.BloodTestRecord {
	v := func(mu, sigma float64) *float64 { return models.Float(g.normal(mu, sigma)) }
	return models.BloodTestRecord{
		TestDate:              date,
		TestType:              testType,
		Notes:                 models.String(Note),
		Hemoglobin:            v(p.hemoglobin, 0.3),
		Erythrocytes:          v(p.erythrocytes, 0.2),
		MCV:                   v(90, 3),
		MCH:                   v(30, 1),
		Thrombocytes:          v(p.thrombocytes, 20),
		Leukocytes:            v(p.leukocytes, 0.5),
		Segment:               v(p.segment, 3),
		Monocytes:             v(6, 1),
		Lymphocytes:           v(p.lymphocytes, 2),
		Basophils:             v(1, 0.2),
		Eosinophils:           v(3, 0.5),
		ALAT:                  v(p.alat, 3),
		ASAT:                  v(p.asat, 3),
		Creatinine:            v(0.9, 0.1),
		EGFR:                  v(p.egfr, 5),
		Iron:                  v(p.iron, 10),
		TransferrinSaturation: v(p.transferrinSat, 3),
		GammaGT:               v(p.gammaGT, 3),
		AP:                    v(p.ap, 5),
		IronSaturation:        v(p.ironSat, 20),
		EBK:                   v(p.ebk, 0.2),
		Ferritin:              v(p.ferritin, 10),
		Transferrin:           v(p.transferrin, 0.2),
		Cholesterol:           v(p.cholesterol, 10),
		Triglycerides:         v(p.triglycerides, 15),
		LDLChol:               v(p.ldl, 10),
		Sodium:                v(p.sodium, 2),
		Calcium:               v(2.4, 0.1),
		Potassium:             v(p.potassium, 0.1),
		TSHBasal:              v(p.tsh, 0.2),
		HK:                    v(0.1, 0.02),
		LastModified:          &stamp,
	}
}

// sportFollowup overrides the headline results of the baseline session.
type sportFollowup struct {
	day      int
	testType string
	cooper   float64
	run5k    string
	pushups  float64
	plank    string
	burpees  float64
	vo2max   float64
}

var sportFollowups = []sportFollowup{
	{day: 14, testType: "Mid-Omnivor (2W)", cooper: 2450, run5k: "25:15", pushups: 36, plank: "2:35", burpees: 46, vo2max: 45.5},
	{day: 42, testType: "Early-Vegan (2W)", cooper: 2420, run5k: "25:40", pushups: 34, plank: "2:25", burpees: 44, vo2max: 44.5},
	{day: Days, testType: "Post-Vegan (4W)", cooper: 2380, run5k: "26:00", pushups: 33, plank: "2:20", burpees: 43, vo2max: 44},
}

func (g *generator) sport(start, stamp time.Time) []models.SportTestRecord {
	v := func(mu, sigma float64) *float64 { return models.Float(g.normal(mu, sigma)) }
	base := models.SportTestRecord{
		TestDate:        start,
		TestType:        "Baseline (Omnivor)",
		GeneralNotes:    models.String(SportNote),
		CooperDistance:  v(2400, 50),
		CooperAvgHR:     v(165, 5),
		CooperMaxHR:     v(180, 5),
		CooperPace:      v(5.0, 0.2),
		CooperKcal:      v(650, 20),
		CooperWarmup:    v(5, 1),
		CooperAerob:     v(6, 1),
		CooperAnaerob:   v(1, 0.5),
		CooperIntensive: models.Float(0),
		Run5kTime:       models.String("25:30"),
		Run5kAvgHR:      v(170, 5),
		Run5kMaxHR:      v(185, 5),
		Run5kPace:       v(5.1, 0.2),
		Run5kKcal:       v(350, 20),
		Run5kWarmup:     v(5, 1),
		Run5kAerob:      v(20, 2),
		Run5kAnaerob:    v(5, 1),
		Run5kIntensive:  models.Float(0),
		PushupsReps:     v(35, 3),
		PushupsAvgHR:    v(120, 5),
		PushupsMaxHR:    v(140, 5),
		PlankTime:       models.String("2:30"),
		PlankAvgHR:      v(110, 5),
		PlankMaxHR:      v(125, 5),
		BurpeeReps:      v(45, 3),
		BurpeeAvgHR:     v(150, 5),
		BurpeeMaxHR:     v(170, 5),
		VO2maxValue:     v(45, 2),
		VO2maxAvgHR:     v(175, 5),
		VO2maxMaxHR:     v(190, 5),
		VO2maxDuration:  models.String("12:00"),
		VO2maxSpeed:     models.String("12.0 km/h"),
		LastModified:    &stamp,
	}

	rows := []models.SportTestRecord{base}
	for _, f := range sportFollowups {
		// Unchanged fields share pointers with the baseline; rows are never
		// written through.
		r := base
		r.TestDate = start.AddDate(0, 0, f.day-1)
		r.TestType = f.testType
		r.CooperDistance = v(f.cooper, 50)
		r.Run5kTime = models.String(f.run5k)
		r.PushupsReps = v(f.pushups, 3)
		r.PlankTime = models.String(f.plank)
		r.BurpeeReps = v(f.burpees, 3)
		r.VO2maxValue = v(f.vo2max, 2)
		rows = append(rows, r)
	}
	return rows
}
