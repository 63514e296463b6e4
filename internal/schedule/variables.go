package schedule

import (
	"sort"
	"strings"
)

// Variable binds an IRSx variable name to an element path inside a schedule.
type Variable struct {
	Schedule string
	// Part is the part name, or the group name when Group is true.
	Part  string
	Group bool
	Name  string
	// Path is relative to the schedule root, or to the group element for groups.
	Path string
}

// scheduleRoots locates each schedule's root element below <Return>.
var scheduleRoots = map[string]string{
	ReturnHeader: "ReturnHeader",
	IRS990:       "ReturnData/IRS990",
	IRS990EZ:     "ReturnData/IRS990EZ",
	IRS990PF:     "ReturnData/IRS990PF",
	ScheduleJ:    "ReturnData/IRS990ScheduleJ",
}

// groupElements locates each repeating group's element below its schedule root.
var groupElements = map[string]string{
	"SkdJRltdOrgOffcrTrstKyEmpl": "RltdOrgOfficerTrstKeyEmplGrp",
}

var variables = []Variable{
	{ReturnHeader, "returnheader990x_part_i", false, "ein", "Filer/EIN"},
	{ReturnHeader, "returnheader990x_part_i", false, "BsnssNm_BsnssNmLn1Txt", "Filer/BusinessName/BusinessNameLine1Txt"},
	{ReturnHeader, "returnheader990x_part_i", false, "BsnssNm_BsnssNmLn2Txt", "Filer/BusinessName/BusinessNameLine2Txt"},
	{ReturnHeader, "returnheader990x_part_i", false, "USAddrss_AddrssLn1Txt", "Filer/USAddress/AddressLine1Txt"},
	{ReturnHeader, "returnheader990x_part_i", false, "USAddrss_CtyNm", "Filer/USAddress/CityNm"},
	{ReturnHeader, "returnheader990x_part_i", false, "USAddrss_SttAbbrvtnCd", "Filer/USAddress/StateAbbreviationCd"},
	{ReturnHeader, "returnheader990x_part_i", false, "USAddrss_ZIPCd", "Filer/USAddress/ZIPCd"},
	{ReturnHeader, "returnheader990x_part_i", false, "RtrnHdr_RtrnCd", "ReturnTypeCd"},
	{ReturnHeader, "returnheader990x_part_i", false, "RtrnHdr_TxPrdBgnDt", "TaxPeriodBeginDt"},
	{ReturnHeader, "returnheader990x_part_i", false, "RtrnHdr_TxPrdEndDt", "TaxPeriodEndDt"},
	{ReturnHeader, "returnheader990x_part_i", false, "RtrnHdr_TxYr", "TaxYr"},

	{IRS990, "part_i", false, "TtlEmplyCnt", "TotalEmployeeCnt"},
	{IRS990, "part_i", false, "CYTtlRvnAmt", "CYTotalRevenueAmt"},
	{IRS990, "part_i", false, "CYTtlExpnssAmt", "CYTotalExpensesAmt"},
	{IRS990, "part_viii", false, "FdrtdCmpgnsAmt", "FederatedCampaignsAmt"},
	{IRS990, "part_viii", false, "MmbrshpDsAmt", "MembershipDuesAmt"},
	{IRS990, "part_viii", false, "FndrsngAmt", "FundraisingAmt"},
	{IRS990, "part_viii", false, "RltdOrgnztnsAmt", "RelatedOrganizationsAmt"},
	{IRS990, "part_viii", false, "GvrnmntGrntsAmt", "GovernmentGrantsAmt"},
	{IRS990, "part_viii", false, "AllOthrCntrbtnsAmt", "AllOtherContributionsAmt"},
	{IRS990, "part_viii", false, "NncshCntrbtnsAmt", "NoncashContributionsAmt"},
	{IRS990, "part_viii", false, "TtlCntrbtnsAmt", "TotalContributionsAmt"},

	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "PrsnNm", "PersonNm"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "BsnssNmLn1Txt", "BusinessName/BusinessNameLine1Txt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "TtlTxt", "TitleTxt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "BsCmpnstnFlngOrgAmt", "BaseCompensationFilingOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "CmpnstnBsdOnRltdOrgsAmt", "CompensationBasedOnRltdOrgsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "BnsFlngOrgnztnAmnt", "BonusFilingOrganizationAmount"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "BnsRltdOrgnztnsAmt", "BonusRelatedOrganizationsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "OthrCmpnstnFlngOrgAmt", "OtherCompensationFilingOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "OthrCmpnstnRltdOrgsAmt", "OtherCompensationRltdOrgsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "DfrrdCmpnstnFlngOrgAmt", "DeferredCompensationFlngOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "DfrrdCmpRltdOrgsAmt", "DeferredCompRltdOrgsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "NntxblBnftsFlngOrgAmt", "NontaxableBenefitsFilingOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "NntxblBnftsRltdOrgsAmt", "NontaxableBenefitsRltdOrgsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "TtlCmpnstnFlngOrgAmt", "TotalCompensationFilingOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "TtlCmpnstnRltdOrgsAmt", "TotalCompensationRltdOrgsAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "CmpRprtPrr990FlngOrgAmt", "CompReportPrior990FilingOrgAmt"},
	{ScheduleJ, "SkdJRltdOrgOffcrTrstKyEmpl", true, "CmpRprtPrr990RltdOrgsAmt", "CompReportPrior990RltdOrgsAmt"},
}

// Variables returns the variable table sorted by schedule, part, and name.
func Variables() []Variable {
	out := make([]Variable, len(variables))
	copy(out, variables)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Schedule != b.Schedule {
			return a.Schedule < b.Schedule
		}
		if a.Part != b.Part {
			return a.Part < b.Part
		}
		return a.Name < b.Name
	})
	return out
}

// variablesFor returns the table rows of one schedule, in declaration order.
func variablesFor(name string) []Variable {
	var out []Variable
	for _, v := range variables {
		if v.Schedule == name {
			out = append(out, v)
		}
	}
	return out
}

func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
