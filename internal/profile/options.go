package profile

var incomeOptions = []string{
	"Below 1L", "1L-3L", "3L-5L", "5L-7L", "7L-10L",
	"10L-15L", "15L-20L", "20L-25L", "25L-30L", "Above 30L",
}

var heightOptions = []string{
	"Below 4ft",
	"4ft 1in", "4ft 2in", "4ft 3in", "4ft 4in", "4ft 5in", "4ft 6in",
	"4ft 7in", "4ft 8in", "4ft 9in", "4ft 10in", "4ft 11in",
	"5ft", "5ft 1in", "5ft 2in", "5ft 3in", "5ft 4in", "5ft 5in",
	"5ft 6in", "5ft 7in", "5ft 8in", "5ft 9in", "5ft 10in", "5ft 11in",
	"6ft", "6ft 1in", "6ft 2in", "6ft 3in", "6ft 4in", "6ft 5in",
	"6ft 6in", "6ft 7in", "6ft 8in", "6ft 9in", "6ft 10in", "6ft 11in",
	"7ft", "Above 7ft",
}

var complexionOptions = []string{"Fair", "Wheatish", "Wheatish-Fair", "Wheatish-Dark", "Dark", "Other"}

var educationOptions = []string{
	"No Education", "Primary School", "High School", "Higher Secondary", "Diploma",
	"Under Graduate", "Post Graduate", "Ph.D.", "Other",
}

var weightOptions = []string{
	"Less than 40kg", "40-45kg", "45-50kg", "50-55kg", "55-60kg", "60-65kg",
	"65-70kg", "70-75kg", "75-80kg", "80-85kg", "85-90kg", "90-95kg",
	"95-100kg", "100-110kg", "110-120kg", "Above 120kg",
}

var jobTypeOptions = []string{
	"Self Employed", "Government Service", "Private Service", "Business",
	"Student", "Home Maker", "Other",
}

var stateOptions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jammu and Kashmir",
	"Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh", "Maharashtra",
	"Manipur", "Meghalaya", "Mizoram", "Nagaland", "Odisha", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal", "Other",
}

// Options holds the closed choice sets for select fields, keyed by field name
var Options = map[string][]string{
	"gender":            {"Male", "Female", "Other"},
	"profileCreatedFor": {"Sister", "Brother", "Son", "Daughter", "Relative", "Friend", "Other"},
	"martialStatus":     {"Single", "Married", "Divorced", "Widowed", "Annulled", "Other"},
	"education":         educationOptions,
	"jobType":           jobTypeOptions,
	"income":            incomeOptions,
	"height":            heightOptions,
	"weight":            weightOptions,
	"complexion":        complexionOptions,
	"motherTongue": {
		"Tamil", "English", "Hindi", "Kannada", "Telugu", "Malayalam",
		"Marathi", "Gujarati", "Punjabi", "Urdu", "Other",
	},
	"fatherOccupation": without(jobTypeOptions, "Student"),
	"motherOccupation": without(jobTypeOptions, "Student"),
	"familyType":       {"Nuclear", "Joint", "Extended", "Other"},
	"areYouSaved":      {"Yes", "No"},
	"areYouBaptized":   {"Yes", "No"},
	"areYouAnointed":   {"Yes", "No"},
	"denomination":     {"Pentecostal", "Catholic", "Protestant", "Orthodox", "Other"},
	"exJobType":        withAny(jobTypeOptions),
	"exIncome":         withAny(incomeOptions),
	"exComplexion":     withAny(complexionOptions),
	"state":            stateOptions,
}

func without(options []string, drop string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if o != drop {
			out = append(out, o)
		}
	}
	return out
}

func withAny(options []string) []string {
	return append([]string{"Any"}, options...)
}
