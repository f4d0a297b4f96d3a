package artifact

import "path"

// buildOutput is where `forge build` leaves the artifact of contract.
func buildOutput(contract string) string {
	return "./" + path.Join("out", contract+".sol", contract+".json")
}

var mainOnly = []string{"main"}

// DefaultTable lists the artifacts the Admin UI needs to function. The group
// names are migrated into the ABIs module of the Admin UI as-is; they mostly
// match the contract names here, except for the rule and handler diamonds,
// whose ABI is the concatenation of their facets.
//
// A commented-out source is disabled without dropping its group.
func DefaultTable() Table {
	return NewTable(
		Group{Name: "ApplicationERC20Pricing", Branches: mainOnly, Files: []string{buildOutput("ApplicationERC20Pricing")}},
		Group{Name: "ApplicationERC721Pricing", Branches: mainOnly, Files: []string{buildOutput("ApplicationERC721Pricing")}},
		Group{Name: "ApplicationHandler", Branches: mainOnly, Files: []string{buildOutput("ApplicationHandler")}},
		Group{Name: "AppManager", Branches: mainOnly, Files: []string{buildOutput("AppManager")}},
		Group{
			Name:     "HandlerDiamond",
			Branches: mainOnly,
			Files: []string{
				buildOutput("ERC20HandlerMainFacet"),
				buildOutput("ERC20TaggedRuleFacet"),
				buildOutput("ERC20NonTaggedRuleFacet"),
				buildOutput("FeesFacet"),
				buildOutput("ERC721HandlerMainFacet"),
				buildOutput("ERC721TaggedRuleFacet"),
				buildOutput("ERC721NonTaggedRuleFacet"),
				buildOutput("TradingRuleFacet"),
			},
		},
		Group{Name: "OracleApproved", Branches: mainOnly, Files: []string{buildOutput("OracleApproved")}},
		Group{Name: "OracleDenied", Branches: mainOnly, Files: []string{buildOutput("OracleDenied")}},
		Group{Name: "PauseRules", Branches: mainOnly, Files: []string{buildOutput("PauseRules")}},
		Group{Name: "ApplicationERC20", Branches: mainOnly, Files: []string{buildOutput("ApplicationERC20")}},
		Group{Name: "ApplicationERC721", Branches: mainOnly, Files: []string{buildOutput("ApplicationERC721")}},
		Group{
			Name:     "RuleDiamond",
			Branches: mainOnly,
			Files: []string{
				buildOutput("ApplicationAccessLevelProcessorFacet"),
				buildOutput("ApplicationPauseProcessorFacet"),
				buildOutput("ApplicationRiskProcessorFacet"),
				buildOutput("ERC20RuleProcessorFacet"),
				buildOutput("ERC20TaggedRuleProcessorFacet"),
				buildOutput("ERC721RuleProcessorFacet"),
				buildOutput("ERC721TaggedRuleProcessorFacet"),
				// buildOutput("FeeRuleProcessorFacet"),
				buildOutput("RuleApplicationValidationFacet"),
				buildOutput("AppRuleDataFacet"),
				// buildOutput("FeeRuleDataFacet"),
				buildOutput("RuleDataFacet"),
				buildOutput("TaggedRuleDataFacet"),
			},
		},
	)
}
