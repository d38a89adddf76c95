package normalize

import "strings"

type keywordRule struct {
	label    string
	keywords []string
}

// Order matters: the first department with a matching keyword wins.
var departmentRules = []keywordRule{
	{"Engineering", []string{"software engineer", "backend engineer", "frontend engineer",
		"full stack engineer", "fullstack engineer", "devops engineer",
		"site reliability", "sre ", "platform engineer",
		"cloud engineer", "infrastructure engineer",
		"embedded engineer", "firmware engineer",
		"qa engineer", "test engineer", "quality engineer",
		"mobile engineer", "ios engineer", "android engineer",
		"machine learning engineer", "ml engineer",
		"software developer", "web developer",
		"backend developer", "frontend developer",
		"full stack developer", "fullstack developer",
		"java developer", "python developer", ".net developer",
		"c++ developer", "rust developer", "golang developer",
		"react developer", "angular developer", "vue developer",
		"mobile developer", "ios developer", "android developer",
		"developer", "entwickler", "ontwikkelaar"}},
	{"Data", []string{"data scientist", "data engineer", "data analyst",
		"data architect", "analytics engineer",
		"machine learning", "ml ", " ai ", "artificial intelligence",
		"business intelligence", " bi ", "data platform"}},
	{"Design", []string{"ux design", "ui design", "product design",
		"graphic design", "visual design", "interaction design",
		"ux researcher", "ux writer", "creative director"}},
	{"Product", []string{"product manager", "product owner", "product lead",
		"product director", "product analyst", "scrum master",
		"agile coach"}},
	{"HR", []string{"human resource", "people operations", "people partner",
		"people manager", "talent acqui", "recruiter",
		"recruiting", "recruitment", "hr manager",
		"hr business partner", "hrbp", "people & culture",
		"employer brand", "compensation", "payroll"}},
	{"Marketing", []string{"marketing manager", "marketing director",
		"content market", "digital market", "growth market",
		"seo ", "sem ", "social media", "brand manager",
		"communications manager", "pr manager",
		"community manager", "marketing specialist",
		"marketing coordinator", "copywriter"}},
	{"Sales", []string{"sales manager", "sales director", "sales represent",
		"account executive", "account manager",
		"business development", "sales engineer",
		"sales consultant", "inside sales", "field sales",
		"revenue ", "commercial manager"}},
	{"Finance", []string{"financial analyst", "finance manager", "accountant",
		"controller", "financial controller", "cfo ",
		"treasury", "tax ", "audit", "bookkeeper",
		"finance director", "fp&a"}},
	{"Legal", []string{"legal counsel", "lawyer", "attorney", "jurist",
		"compliance officer", "compliance manager",
		"regulatory", "legal advisor", "paralegal",
		"privacy officer", "dpo "}},
	{"Operations", []string{"operations manager", "operations director",
		"supply chain", "logistics", "procurement",
		"facility", "warehouse", "inventory",
		"office manager", "chief operating"}},
	{"Customer Support", []string{"customer support", "customer service",
		"customer success", "helpdesk", "help desk",
		"support engineer", "support specialist",
		"technical support", "service desk"}},
	{"IT", []string{"system admin", "sysadmin", "it manager",
		"it support", "network engineer", "security engineer",
		"cybersecurity", "information security",
		"it director", "ciso", "it specialist"}},
}

// Department infers a department from title keywords, or "".
func Department(title string) string {
	if title == "" {
		return ""
	}
	t := strings.ToLower(title)
	for _, r := range departmentRules {
		for _, kw := range r.keywords {
			if strings.Contains(t, kw) {
				return r.label
			}
		}
	}
	return ""
}
