package risk

// Kind is the declared numeric type of a clinical field.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

// Field describes one of the eight inputs the diabetes classifier needs.
// Aliases are the keyword spellings (English and Persian) searched for in
// OCR text; Prompt is the Persian question asked during step-by-step
// collection.
type Field struct {
	Name        string
	Kind        Kind
	Aliases     []string
	Prompt      string
	Description string
}

// RequiredFields is the fixed, ordered field set of the classifier. The
// order defines prompt sequencing and the feature vector layout, so it must
// never be reordered.
var RequiredFields = []Field{
	{
		Name:        "Pregnancies",
		Kind:        KindInt,
		Aliases:     []string{"pregnancies", "بارداری"},
		Prompt:      "تعداد دفعات بارداری را وارد کنید. اگر مرد هستید یا تجربه بارداری ندارید، 0 وارد کنید.",
		Description: "تعداد دفعات بارداری",
	},
	{
		Name:        "Glucose",
		Kind:        KindInt,
		Aliases:     []string{"glucose", "قند"},
		Prompt:      "مقدار قند خون (mg/dL) را وارد کنید (قند خون طبیعی کمتر از 100 است).",
		Description: "غلظت گلوکز پلاسما در تست تحمل گلوکز خوراکی",
	},
	{
		Name:        "BloodPressure",
		Kind:        KindInt,
		Aliases:     []string{"bloodpressure", "bp", "فشار خون"},
		Prompt:      "فشار خون (mm Hg) خود را بنویسید (معمولاً حدود 80 است).",
		Description: "فشار خون دیاستولیک (mm Hg)",
	},
	{
		Name:        "SkinThickness",
		Kind:        KindInt,
		Aliases:     []string{"skinthickness", "پوست", "skin thickness"},
		Prompt:      "ضخامت چین پوستی (میلی‌متر) بدنتان را وارد کنید (معمولا ضخامت پوستی  2 میلی متر است).",
		Description: "ضخامت چین پوستی تریسپس (mm)",
	},
	{
		Name:        "Insulin",
		Kind:        KindInt,
		Aliases:     []string{"insulin", "انسولین"},
		Prompt:      "مقدار انسولین (mu U/ml) بدنتان را ارسال کنید (برای یک انسان عادی، حدود 80 است).",
		Description: "انسولین سرم 2 ساعت (mu U/ml)",
	},
	{
		Name:        "BMI",
		Kind:        KindFloat,
		Aliases:     []string{"bmi", "body mass index", "شاخص توده بدنی"},
		Prompt:      "شاخص توده بدنی (BMI) را بنویسید (اگر نمی‌دانید: وزن (kg) ÷ (قد(m))²)",
		Description: "شاخص توده بدنی (وزن بر حسب کیلوگرم تقسیم بر مجذور قد بر حسب متر)",
	},
	{
		Name:    "DiabetesPedigreeFunction",
		Kind:    KindFloat,
		Aliases: []string{"diabetespedigreefunction", "diabetes pedigree", "دیابت"},
		Prompt: "شاخص سابقه خانوادگی دیابت:\n" +
			"- اگر هیچ‌کس در خانواده مبتلا نیست: 0.0\n" +
			"- اگر یکی‌دو نفر از اقوام نزدیک مبتلا هستند: حدود 0.5\n" +
			"- اگر بیش از دو نفر مبتلا هستند: حدود 1.0\n" +
			"- اگر بیشتر اعضای خانواده مبتلا هستند: نزدیک 2.0",
		Description: "تابع تبار دیابت",
	},
	{
		Name:        "Age",
		Kind:        KindInt,
		Aliases:     []string{"age", "سن"},
		Prompt:      "چند سال عمر کرده اید؟",
		Description: "سن (سال)",
	},
}

// FieldByName returns the field definition, or nil when the name is unknown.
func FieldByName(name string) *Field {
	for i := range RequiredFields {
		if RequiredFields[i].Name == name {
			return &RequiredFields[i]
		}
	}
	return nil
}

// Features maps field names to their parsed numeric values.
type Features map[string]float64

// Complete reports whether every required field is present.
func (f Features) Complete() bool {
	return len(f.Missing()) == 0
}

// Missing lists the required fields absent from the feature set, in
// RequiredFields order.
func (f Features) Missing() []string {
	var missing []string
	for _, field := range RequiredFields {
		if _, ok := f[field.Name]; !ok {
			missing = append(missing, field.Name)
		}
	}
	return missing
}

// Vector lays the features out in RequiredFields order, the layout the
// serving model was trained on. Absent fields contribute zero.
func (f Features) Vector() []float64 {
	vec := make([]float64, len(RequiredFields))
	for i, field := range RequiredFields {
		vec[i] = f[field.Name]
	}
	return vec
}
