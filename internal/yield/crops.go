package yield

// CropType names a crop the service knows about.
type CropType string

const (
	CropRice        CropType = "Rice"
	CropWheat       CropType = "Wheat"
	CropMaize       CropType = "Maize"
	CropChickpea    CropType = "Chickpea"
	CropKidneyBeans CropType = "Kidney Beans"
	CropPigeonPeas  CropType = "Pigeon Peas"
	CropMothBeans   CropType = "Moth Beans"
	CropMungBean    CropType = "Mung Bean"
	CropBlackgram   CropType = "Blackgram"
	CropLentil      CropType = "Lentil"
	CropPomegranate CropType = "Pomegranate"
	CropBanana      CropType = "Banana"
	CropMango       CropType = "Mango"
	CropGrapes      CropType = "Grapes"
	CropWatermelon  CropType = "Watermelon"
	CropMuskmelon   CropType = "Muskmelon"
	CropApple       CropType = "Apple"
	CropOrange      CropType = "Orange"
	CropPapaya      CropType = "Papaya"
	CropCoconut     CropType = "Coconut"
	CropCotton      CropType = "Cotton"
	CropJute        CropType = "Jute"
	CropCoffee      CropType = "Coffee"
)

// DefaultBaseYield applies to every crop without a dedicated baseline.
const DefaultBaseYield = 4.0

// Crops lists the selectable crops in display order.
var Crops = []CropType{
	CropRice, CropMaize, CropChickpea, CropKidneyBeans, CropPigeonPeas,
	CropMothBeans, CropMungBean, CropBlackgram, CropLentil, CropPomegranate,
	CropBanana, CropMango, CropGrapes, CropWatermelon, CropMuskmelon,
	CropApple, CropOrange, CropPapaya, CropCoconut, CropCotton, CropJute,
	CropCoffee, CropWheat,
}

var baseYields = map[CropType]float64{
	CropRice:  5.0,
	CropWheat: 3.5,
	CropMaize: 6.0,
}

// BaseYield returns the reference yield in tons/hectare for a crop.
// Matching is exact; unknown or empty names get DefaultBaseYield.
func BaseYield(crop string) float64 {
	if y, ok := baseYields[CropType(crop)]; ok {
		return y
	}
	return DefaultBaseYield
}

// CropInfo is the catalogue entry exposed over the API.
type CropInfo struct {
	Name      CropType `json:"name"`
	BaseYield float64  `json:"baseYield"`
}

// Catalog returns every known crop with its baseline.
func Catalog() []CropInfo {
	out := make([]CropInfo, 0, len(Crops))
	for _, c := range Crops {
		out = append(out, CropInfo{Name: c, BaseYield: BaseYield(string(c))})
	}
	return out
}
