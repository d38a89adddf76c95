package normalize

import "strings"

var techRules = []keywordRule{
	{"Python", []string{" python ", " python,", " python/", " python."}},
	{"JavaScript", []string{"javascript"}},
	{"TypeScript", []string{"typescript"}},
	{"Java", []string{" java ", " java,", " java/", "java developer", "java engineer",
		"java software", "java backend", "senior java", "lead java",
		"junior java", "medior java"}},
	{"C#", []string{" c# ", " c#,", ".net developer", ".net engineer", "dotnet"}},
	{"C++", []string{"c++", " cpp "}},
	{"Go", []string{" go ", " go,", " go/", "golang"}},
	{"Rust", []string{" rust ", " rust,", " rust/"}},
	{"Kotlin", []string{"kotlin"}},
	{"Scala", []string{" scala ", " scala,"}},
	{"Ruby", []string{" ruby ", " ruby,"}},
	{"PHP", []string{" php ", " php,", " php/"}},
	{"Swift", []string{" swift ", " swift,"}},
	{"React", []string{"react"}},
	{"Vue", []string{"vue.js", "vuejs", " vue ", " vue,"}},
	{"Angular", []string{"angular"}},
	{"Next.js", []string{"next.js", "nextjs"}},
	{"Svelte", []string{"svelte"}},
	{"Node.js", []string{"node.js", "nodejs"}},
	{"Django", []string{"django"}},
	{"FastAPI", []string{"fastapi"}},
	{"Spring", []string{"spring boot", " spring "}},
	{".NET", []string{" .net ", " .net,", "dotnet", "asp.net"}},
	{"Laravel", []string{"laravel"}},
	{"Rails", []string{" rails ", "ruby on rails"}},
	{"SQL", []string{" sql ", " sql,", " sql/"}},
	{"PostgreSQL", []string{"postgresql", "postgres"}},
	{"MongoDB", []string{"mongodb", "mongo "}},
	{"Redis", []string{"redis"}},
	{"Elasticsearch", []string{"elasticsearch"}},
	{"Kafka", []string{"kafka"}},
	{"Spark", []string{" spark ", " spark,", "apache spark"}},
	{"Snowflake", []string{"snowflake"}},
	{"Databricks", []string{"databricks"}},
	{"AWS", []string{" aws ", " aws,", " aws/", "amazon web services"}},
	{"Azure", []string{"azure"}},
	{"GCP", []string{" gcp ", "google cloud"}},
	{"Docker", []string{"docker"}},
	{"Kubernetes", []string{"kubernetes", " k8s "}},
	{"Terraform", []string{"terraform"}},
	{"CI/CD", []string{"ci/cd", " ci cd ", " cicd "}},
	{"GraphQL", []string{"graphql"}},
	{"Machine Learning", []string{"machine learning"}},
	{"AI", []string{" ai ", " ai,", " ai/", "artificial intelligence",
		"generative ai", " genai ", "llm "}},
	{"DevOps", []string{"devops"}},
	{"SAP", []string{" sap ", " sap,", " sap/"}},
	{"Salesforce", []string{"salesforce"}},
	{"Power BI", []string{"power bi", "powerbi"}},
	{"Tableau", []string{"tableau"}},
}

var techDelims = strings.NewReplacer(
	"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
	"|", " ", "/", " ", "\\", " ", "&", " ",
)

// TechTags extracts technology names mentioned in a job title.
func TechTags(title string) []string {
	if title == "" {
		return nil
	}
	t := " " + techDelims.Replace(strings.ToLower(title)) + " "

	var tags []string
	seen := map[string]bool{}
	for _, r := range techRules {
		if seen[r.label] {
			continue
		}
		for _, pat := range r.keywords {
			if strings.Contains(t, pat) {
				tags = append(tags, r.label)
				seen[r.label] = true
				break
			}
		}
	}
	return tags
}
