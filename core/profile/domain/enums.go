// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

type (
	Occupation     string
	TimeCommitment string
	SkillArea      string
)

const (
	OccupationStudent               Occupation = "student"
	OccupationWorkingFullTime       Occupation = "working_full_time"
	OccupationWorkingPartTimeOnIdea Occupation = "working_part_time_on_idea"
	OccupationWorkingFullTimeOnIdea Occupation = "working_full_time_on_idea"
	OccupationBetweenJobs           Occupation = "between_jobs"
)

const (
	TimeCommitmentFullTime  TimeCommitment = "full_time"
	TimeCommitmentPartTime  TimeCommitment = "part_time"
	TimeCommitmentExploring TimeCommitment = "exploring"
)

const (
	SkillAreaProduct        SkillArea = "product"
	SkillAreaDesign         SkillArea = "design"
	SkillAreaEngineering    SkillArea = "engineering"
	SkillAreaSalesMarketing SkillArea = "sales_marketing"
	SkillAreaOperations     SkillArea = "operations"
)

var (
	occupations = []Occupation{
		OccupationStudent,
		OccupationWorkingFullTime,
		OccupationWorkingPartTimeOnIdea,
		OccupationWorkingFullTimeOnIdea,
		OccupationBetweenJobs,
	}
	timeCommitments = []TimeCommitment{
		TimeCommitmentFullTime,
		TimeCommitmentPartTime,
		TimeCommitmentExploring,
	}
	skillAreas = []SkillArea{
		SkillAreaProduct,
		SkillAreaDesign,
		SkillAreaEngineering,
		SkillAreaSalesMarketing,
		SkillAreaOperations,
	}
)

// anySlice adapts a typed enum list to validation.In.
func anySlice[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// dedupeSkillAreas collapses repeated tags, keeping first occurrence order.
func dedupeSkillAreas(in []SkillArea) []SkillArea {
	if in == nil {
		return []SkillArea{}
	}
	seen := make(map[SkillArea]struct{}, len(in))
	out := make([]SkillArea, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
