package validation

import "github.com/qtc-soft/schedule-api/internal/entity"

// Per-entity schemas, one for create and one for update.  Update schemas
// require id and relax everything else; create schemas never accept id.
// These are constructed once, not per request.

var (
	// UserCreate covers owner registration.  Confirmation flags and keys are
	// server-managed and therefore absent here.
	UserCreate = Schema{Name: "UserCreate", Fields: map[string]Rule{
		"login":          {entity.KindString, "required,min=4,max=20"},
		"password":       {entity.KindString, "required,min=4,max=20"},
		"email":          {entity.KindString, "required,email"},
		"phone":          {entity.KindString, "required,max=50"},
		"name":           {entity.KindString, "omitempty,max=100"},
		"organization":   {entity.KindString, "omitempty,max=200"},
		"description":    {entity.KindString, "omitempty,max=200"},
		"country_id":     {entity.KindInt, "omitempty,min=0"},
		"city_id":        {entity.KindInt, "omitempty,min=0"},
		"address":        {entity.KindString, "omitempty,max=200"},
		"mail_agreement": {entity.KindBool, ""},
		"flags":          {entity.KindInt, ""},
		"data":           {entity.KindJSON, ""},
	}}

	UserUpdate = Schema{Name: "UserUpdate", Fields: map[string]Rule{
		"id":             {entity.KindInt, "required,min=1"},
		"login":          {entity.KindString, "omitempty,min=4,max=20"},
		"password":       {entity.KindString, "omitempty,min=4,max=20"},
		"email":          {entity.KindString, "omitempty,email"},
		"phone":          {entity.KindString, "omitempty,max=50"},
		"name":           {entity.KindString, "omitempty,max=100"},
		"organization":   {entity.KindString, "omitempty,max=200"},
		"description":    {entity.KindString, "omitempty,max=200"},
		"country_id":     {entity.KindInt, "omitempty,min=0"},
		"city_id":        {entity.KindInt, "omitempty,min=0"},
		"address":        {entity.KindString, "omitempty,max=200"},
		"mail_agreement": {entity.KindBool, ""},
		"flags":          {entity.KindInt, ""},
		"data":           {entity.KindJSON, ""},
	}}

	CustomerCreate = Schema{Name: "CustomerCreate", Fields: map[string]Rule{
		"login":          {entity.KindString, "required,min=4,max=20"},
		"password":       {entity.KindString, "required,min=4,max=20"},
		"email":          {entity.KindString, "required,email"},
		"phone":          {entity.KindString, "required,max=50"},
		"name":           {entity.KindString, "omitempty,max=100"},
		"address":        {entity.KindString, "omitempty,max=200"},
		"mail_agreement": {entity.KindBool, ""},
		"flags":          {entity.KindInt, ""},
		"data":           {entity.KindJSON, ""},
	}}

	CustomerUpdate = Schema{Name: "CustomerUpdate", Fields: map[string]Rule{
		"id":             {entity.KindInt, "required,min=1"},
		"login":          {entity.KindString, "omitempty,min=4,max=20"},
		"password":       {entity.KindString, "omitempty,min=4,max=20"},
		"email":          {entity.KindString, "omitempty,email"},
		"phone":          {entity.KindString, "omitempty,max=50"},
		"name":           {entity.KindString, "omitempty,max=100"},
		"address":        {entity.KindString, "omitempty,max=200"},
		"mail_agreement": {entity.KindBool, ""},
		"flags":          {entity.KindInt, ""},
		"data":           {entity.KindJSON, ""},
	}}

	ScheduleCreate = Schema{Name: "ScheduleCreate", Fields: map[string]Rule{
		"name":        {entity.KindString, "required,max=100"},
		"description": {entity.KindString, "omitempty,max=200"},
		"email":       {entity.KindString, "omitempty,email"},
		"phone":       {entity.KindString, "omitempty,max=50"},
		"country_id":  {entity.KindInt, "omitempty,min=0"},
		"city_id":     {entity.KindInt, "omitempty,min=0"},
		"creater_id":  {entity.KindInt, "omitempty,min=0"},
		"address":     {entity.KindString, "omitempty,max=200"},
		"activate":    {entity.KindBool, ""},
		"flags":       {entity.KindInt, ""},
		"data":        {entity.KindJSON, ""},
	}}

	ScheduleUpdate = Schema{Name: "ScheduleUpdate", Fields: map[string]Rule{
		"id":          {entity.KindInt, "required,min=1"},
		"name":        {entity.KindString, "omitempty,max=100"},
		"description": {entity.KindString, "omitempty,max=200"},
		"email":       {entity.KindString, "omitempty,email"},
		"phone":       {entity.KindString, "omitempty,max=50"},
		"country_id":  {entity.KindInt, "omitempty,min=0"},
		"city_id":     {entity.KindInt, "omitempty,min=0"},
		"creater_id":  {entity.KindInt, "omitempty,min=0"},
		"address":     {entity.KindString, "omitempty,max=200"},
		"activate":    {entity.KindBool, ""},
		"flags":       {entity.KindInt, ""},
		"data":        {entity.KindJSON, ""},
	}}

	ScheduleDetailCreate = Schema{Name: "ScheduleDetailCreate", Fields: map[string]Rule{
		"time":        {entity.KindInt, "required,min=0"},
		"description": {entity.KindString, "omitempty,max=200"},
		"members":     {entity.KindInt, "omitempty,min=1"},
		"price":       {entity.KindFloat, "omitempty,min=0"},
		"schedule_id": {entity.KindInt, "required,min=1"},
		"flags":       {entity.KindInt, ""},
	}}

	ScheduleDetailUpdate = Schema{Name: "ScheduleDetailUpdate", Fields: map[string]Rule{
		"id":          {entity.KindInt, "required,min=1"},
		"time":        {entity.KindInt, "omitempty,min=0"},
		"description": {entity.KindString, "omitempty,max=200"},
		"members":     {entity.KindInt, "omitempty,min=1"},
		"price":       {entity.KindFloat, "omitempty,min=0"},
		"schedule_id": {entity.KindInt, "required,min=1"},
		"flags":       {entity.KindInt, ""},
	}}

	OrderCreate = Schema{Name: "OrderCreate", Fields: map[string]Rule{
		"time":         {entity.KindInt, "required,min=0"},
		"description":  {entity.KindString, "omitempty,max=200"},
		"status":       {entity.KindString, "omitempty,oneof=booking confirmed rejected paid"},
		"payment":      {entity.KindBool, ""},
		"auto_confirm": {entity.KindBool, ""},
		"customer_id":  {entity.KindInt, "required,min=1"},
		"schedule_id":  {entity.KindInt, "required,min=1"},
		"flags":        {entity.KindInt, ""},
	}}

	OrderUpdate = Schema{Name: "OrderUpdate", Fields: map[string]Rule{
		"id":           {entity.KindInt, "required,min=1"},
		"time":         {entity.KindInt, "omitempty,min=0"},
		"description":  {entity.KindString, "omitempty,max=200"},
		"status":       {entity.KindString, "omitempty,oneof=booking confirmed rejected paid"},
		"payment":      {entity.KindBool, ""},
		"auto_confirm": {entity.KindBool, ""},
		"customer_id":  {entity.KindInt, "omitempty,min=1"},
		"schedule_id":  {entity.KindInt, "required,min=1"},
		"flags":        {entity.KindInt, ""},
	}}

	ReferenceCreate = Schema{Name: "ReferenceCreate", Fields: map[string]Rule{
		"label": {entity.KindString, "required,max=100"},
		"flags": {entity.KindInt, ""},
	}}

	ReferenceUpdate = Schema{Name: "ReferenceUpdate", Fields: map[string]Rule{
		"id":    {entity.KindInt, "required,min=1"},
		"label": {entity.KindString, "omitempty,max=100"},
		"flags": {entity.KindInt, ""},
	}}
)
