package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownRegion is returned when a name or slug matches no district.
var ErrUnknownRegion = errors.New("unknown region")

// AreaCode is the Gyeongsangnam-do province code used by TatsCnctrRateService.
const AreaCode = "48"

// Region is a Gyeongnam district with the codes each upstream service needs.
type Region struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	SignguCode string `json:"signgu_code"`
	NX         int    `json:"nx"`
	NY         int    `json:"ny"`
}

// regions lists the districts in the order the dashboard map shows them.
// NX/NY are KMA forecast grid coordinates of each district office.
var regions = []Region{
	{Name: "창원시", Slug: "changwon", SignguCode: "48120", NX: 90, NY: 77},
	{Name: "진주시", Slug: "jinju", SignguCode: "48170", NX: 81, NY: 75},
	{Name: "통영시", Slug: "tongyeong", SignguCode: "48220", NX: 87, NY: 68},
	{Name: "사천시", Slug: "sacheon", SignguCode: "48240", NX: 80, NY: 71},
	{Name: "김해시", Slug: "gimhae", SignguCode: "48250", NX: 95, NY: 77},
	{Name: "밀양시", Slug: "miryang", SignguCode: "48270", NX: 92, NY: 83},
	{Name: "거제시", Slug: "geoje", SignguCode: "48310", NX: 90, NY: 69},
	{Name: "양산시", Slug: "yangsan", SignguCode: "48330", NX: 97, NY: 79},
	{Name: "의령군", Slug: "uiryeong", SignguCode: "48720", NX: 83, NY: 78},
	{Name: "함안군", Slug: "haman", SignguCode: "48730", NX: 86, NY: 77},
	{Name: "창녕군", Slug: "changnyeong", SignguCode: "48740", NX: 87, NY: 83},
	{Name: "고성군", Slug: "goseong", SignguCode: "48820", NX: 85, NY: 71},
	{Name: "남해군", Slug: "namhae", SignguCode: "48840", NX: 77, NY: 68},
	{Name: "하동군", Slug: "hadong", SignguCode: "48850", NX: 74, NY: 73},
	{Name: "산청군", Slug: "sancheong", SignguCode: "48860", NX: 76, NY: 80},
	{Name: "함양군", Slug: "hamyang", SignguCode: "48870", NX: 74, NY: 82},
	{Name: "거창군", Slug: "geochang", SignguCode: "48880", NX: 77, NY: 86},
	{Name: "합천군", Slug: "hapcheon", SignguCode: "48890", NX: 81, NY: 84},
}

var regionIndex = func() map[string]Region {
	idx := make(map[string]Region, 2*len(regions))
	for _, r := range regions {
		idx[r.Name] = r
		idx[r.Slug] = r
	}
	return idx
}()

// Regions returns every district.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// LookupRegion finds a district by its Korean name or its slug.
func LookupRegion(key string) (Region, error) {
	r, ok := regionIndex[key]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, key)
	}
	return r, nil
}
